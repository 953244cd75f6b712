package services

import "errors"

// The service layer classifies every failure into one of these kinds so the
// handlers can map them to HTTP statuses with errors.Is. Validation errors
// are returned before any write; nothing is partially applied.
var (
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrForbidden             = errors.New("not allowed")
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTimeRange      = errors.New("invalid time range")
	ErrOutOfWindow           = errors.New("requested time is outside the availability window")
	ErrDuplicateRequest      = errors.New("a pending request already exists for this time slot")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrRequestAlreadyPending = errors.New("friend request already pending")
	// ErrStorageConflict covers constraint violations and race losers: for
	// example a second status transition on a request another caller
	// already resolved.
	ErrStorageConflict = errors.New("conflicting update")
)
