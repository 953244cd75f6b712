package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/timewindow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestService runs the hangout request lifecycle:
// pending -> accepted | declined | cancelled, every transition final.
type RequestService struct {
	db  *gorm.DB
	bus events.Bus
}

func NewRequestService(db *gorm.DB, bus events.Bus) *RequestService {
	return &RequestService{db: db, bus: bus}
}

func (s *RequestService) Create(ctx context.Context, senderID uuid.UUID, req models.CreateHangoutRequest) (*models.HangoutRequest, error) {
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad receiver id", ErrInvalidInput)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("%w: cannot send a request to yourself", ErrInvalidInput)
	}
	if _, err := timewindow.ParseDate(req.RequestDate); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidTimeRange, req.RequestDate)
	}
	startClock, err := timewindow.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	endClock, err := timewindow.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if startClock == endClock {
		return nil, fmt.Errorf("%w: request must not be zero-length", ErrInvalidTimeRange)
	}

	var availID *uuid.UUID
	if req.AvailabilityID != "" {
		id, err := uuid.Parse(req.AvailabilityID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad availability id", ErrInvalidInput)
		}
		availID = &id
	}

	hr := models.HangoutRequest{
		SenderID:       senderID,
		ReceiverID:     receiverID,
		AvailabilityID: availID,
		RequestDate:    req.RequestDate,
		StartTime:      startClock.String(),
		EndTime:        endClock.String(),
		Message:        req.Message,
		Status:         models.RequestPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One pending request per (sender, receiver, date, slot). Checked
		// inside the transaction so two identical submits can't both land.
		var count int64
		err := tx.Model(&models.HangoutRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND request_date = ? AND start_time = ? AND end_time = ? AND status = ?",
				senderID, receiverID, hr.RequestDate, hr.StartTime, hr.EndTime, models.RequestPending).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateRequest
		}

		if availID != nil {
			var window models.Availability
			err := tx.First(&window, "id = ?", *availID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: availability window", ErrNotFound)
			}
			if err != nil {
				return err
			}
			if window.UserID != receiverID || !window.IsActive {
				return fmt.Errorf("%w: availability window", ErrNotFound)
			}
			if window.Date != hr.RequestDate {
				return ErrOutOfWindow
			}
			winStart, err := timewindow.ParseClock(window.StartTime)
			if err != nil {
				return err
			}
			winEnd, err := timewindow.ParseClock(window.EndTime)
			if err != nil {
				return err
			}
			if !timewindow.Contains(startClock, endClock, winStart, winEnd) {
				return ErrOutOfWindow
			}
		}

		if err := tx.Create(&hr).Error; err != nil {
			// The partial unique index on pending requests catches the
			// concurrent submit the count above cannot see.
			return fmt.Errorf("%w: %v", ErrDuplicateRequest, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(ctx, &hr, []uuid.UUID{receiverID})
	return &hr, nil
}

// UpdateStatus applies one terminal transition. The receiver may accept or
// decline, the sender may cancel. The write is a conditional UPDATE keyed on
// status=pending; the loser of a race gets ErrStorageConflict.
func (s *RequestService) UpdateStatus(ctx context.Context, actorID, requestID uuid.UUID, status models.RequestStatus) (*models.HangoutRequest, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: %q is not a valid transition", ErrInvalidInput, status)
	}

	var hr models.HangoutRequest
	if err := s.db.WithContext(ctx).First(&hr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch status {
	case models.RequestAccepted, models.RequestDeclined:
		if hr.ReceiverID != actorID {
			return nil, ErrForbidden
		}
	case models.RequestCancelled:
		if hr.SenderID != actorID {
			return nil, ErrForbidden
		}
	}

	res := s.db.WithContext(ctx).Model(&models.HangoutRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// The row exists but was already resolved.
		return nil, ErrStorageConflict
	}

	hr.Status = status
	s.publishStatus(ctx, &hr, []uuid.UUID{hr.SenderID, hr.ReceiverID})
	return &hr, nil
}

// MarkSeen flips the receiver-only seen flag. It never unsets.
func (s *RequestService) MarkSeen(ctx context.Context, actorID, requestID uuid.UUID) error {
	var hr models.HangoutRequest
	if err := s.db.WithContext(ctx).First(&hr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if hr.ReceiverID != actorID {
		return ErrForbidden
	}
	if hr.Seen {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.HangoutRequest{}).
		Where("id = ?", requestID).Update("seen", true).Error
}

// Delete removes one resolved request from history. Pending requests must be
// cancelled or declined first; deleting one would silently strand the other
// party's view of it.
func (s *RequestService) Delete(ctx context.Context, actorID, requestID uuid.UUID) error {
	var hr models.HangoutRequest
	if err := s.db.WithContext(ctx).First(&hr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if hr.SenderID != actorID && hr.ReceiverID != actorID {
		return ErrNotFound
	}
	if hr.Status == models.RequestPending {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.HangoutRequest{}, "id = ?", requestID).Error
	})
}

// ClearHistory deletes every resolved request the caller is party to,
// one by one. Failures are reported per item; the batch keeps going.
func (s *RequestService) ClearHistory(ctx context.Context, actorID uuid.UUID) (*models.ClearHistoryResult, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.HangoutRequest{}).
		Where("(sender_id = ? OR receiver_id = ?) AND status <> ?", actorID, actorID, models.RequestPending).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	result := &models.ClearHistoryResult{}
	for _, id := range ids {
		if err := s.Delete(ctx, actorID, id); err != nil {
			if result.Failed == nil {
				result.Failed = make(map[uuid.UUID]string)
			}
			result.Failed[id] = err.Error()
			continue
		}
		result.Deleted++
	}
	return result, nil
}

// ListReceived returns the caller's incoming pending and accepted requests.
func (s *RequestService) ListReceived(ctx context.Context, userID uuid.UUID) ([]models.HangoutRequestResponse, error) {
	return s.list(ctx, "receiver_id = ?", userID)
}

// ListSent returns the caller's outgoing pending and accepted requests.
func (s *RequestService) ListSent(ctx context.Context, userID uuid.UUID) ([]models.HangoutRequestResponse, error) {
	return s.list(ctx, "sender_id = ?", userID)
}

func (s *RequestService) list(ctx context.Context, cond string, userID uuid.UUID) ([]models.HangoutRequestResponse, error) {
	var reqs []models.HangoutRequest
	err := s.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where(cond, userID).
		Where("status IN ?", []models.RequestStatus{models.RequestPending, models.RequestAccepted}).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.HangoutRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, models.HangoutRequestResponse{
			HangoutRequest: r,
			Sender:         r.Sender.ToSummary(),
			Receiver:       r.Receiver.ToSummary(),
		})
	}
	return out, nil
}

// ListConfirmedPlans returns accepted requests whose time has not passed,
// from either side, soonest first.
func (s *RequestService) ListConfirmedPlans(ctx context.Context, userID uuid.UUID) ([]models.PlanResponse, error) {
	var reqs []models.HangoutRequest
	err := s.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.RequestAccepted).
		Order("request_date asc, start_time asc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.PlanResponse, 0, len(reqs))
	for _, r := range reqs {
		if timewindow.WindowExpired(r.RequestDate, r.StartTime, r.EndTime, now) {
			continue
		}
		friend := r.Sender
		if r.SenderID == userID {
			friend = r.Receiver
		}
		out = append(out, models.PlanResponse{
			ID:          r.ID,
			Friend:      friend.ToSummary(),
			RequestDate: r.RequestDate,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Activity:    r.Message,
			Status:      r.Status,
		})
	}
	return out, nil
}

func (s *RequestService) publishStatus(ctx context.Context, hr *models.HangoutRequest, audience []uuid.UUID) {
	s.bus.Publish(ctx, events.Event{
		Topic:    events.TopicRequestStatusChanged,
		Audience: audience,
		Payload: map[string]string{
			"request_id":  hr.ID.String(),
			"sender_id":   hr.SenderID.String(),
			"receiver_id": hr.ReceiverID.String(),
			"status":      string(hr.Status),
		},
	})
}
