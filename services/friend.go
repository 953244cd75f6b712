package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LuqmanKt98/hangout-app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendService manages friend requests and the symmetric friendship edges
// acceptance creates.
type FriendService struct {
	db *gorm.DB
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) SendFriendRequest(ctx context.Context, senderID uuid.UUID, req models.SendFriendRequestRequest) (*models.FriendRequest, error) {
	receiverID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id", ErrInvalidInput)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("%w: cannot friend yourself", ErrInvalidInput)
	}

	var receiver models.User
	if err := s.db.WithContext(ctx).First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fr := models.FriendRequest{SenderID: senderID, ReceiverID: receiverID, Status: models.FriendRequestPending}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Friendship{}).
			Where("user_id = ? AND friend_id = ?", senderID, receiverID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyFriends
		}

		// Pending in either direction blocks a new one.
		if err := tx.Model(&models.FriendRequest{}).
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
				senderID, receiverID, receiverID, senderID, models.FriendRequestPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRequestAlreadyPending
		}

		// A rejection doesn't block retrying; drop the stale record first.
		if err := tx.Where("sender_id = ? AND receiver_id = ? AND status = ?",
			senderID, receiverID, models.FriendRequestRejected).
			Delete(&models.FriendRequest{}).Error; err != nil {
			return err
		}

		return tx.Create(&fr).Error
	})
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// AcceptFriendRequest writes both friendship edges and removes the request
// in one transaction; if either edge insert fails the request stays pending.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	var fr models.FriendRequest
	if err := s.db.WithContext(ctx).First(&fr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if fr.ReceiverID != actorID {
		return ErrForbidden
	}
	if fr.Status != models.FriendRequestPending {
		return ErrStorageConflict
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := []models.Friendship{
			{UserID: fr.SenderID, FriendID: fr.ReceiverID},
			{UserID: fr.ReceiverID, FriendID: fr.SenderID},
		}
		for i := range edges {
			if err := tx.Create(&edges[i]).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrStorageConflict, err)
			}
		}
		return tx.Delete(&models.FriendRequest{}, "id = ?", requestID).Error
	})
	return err
}

func (s *FriendService) DeclineFriendRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	var fr models.FriendRequest
	if err := s.db.WithContext(ctx).First(&fr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if fr.ReceiverID != actorID {
		return ErrForbidden
	}
	if fr.Status != models.FriendRequestPending {
		return ErrStorageConflict
	}

	return s.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ?", requestID).Update("status", models.FriendRequestRejected).Error
}

// RemoveFriend deletes both edges plus any leftover requests between the
// pair so a fresh request can start clean.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}
		return tx.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, friendID, friendID, userID).
			Delete(&models.FriendRequest{}).Error
	})
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.ProfileSummary, error) {
	var friendIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &friendIDs).Error
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []models.ProfileSummary{}, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", friendIDs).Order("display_name asc").Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]models.ProfileSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToSummary())
	}
	return out, nil
}

func (s *FriendService) ListReceivedFriendRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestResponse, error) {
	return s.listRequests(ctx, "receiver_id = ?", userID)
}

func (s *FriendService) ListSentFriendRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestResponse, error) {
	return s.listRequests(ctx, "sender_id = ?", userID)
}

func (s *FriendService) listRequests(ctx context.Context, cond string, userID uuid.UUID) ([]models.FriendRequestResponse, error) {
	var reqs []models.FriendRequest
	err := s.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where(cond, userID).
		Where("status = ?", models.FriendRequestPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.FriendRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, models.FriendRequestResponse{
			FriendRequest: r,
			Sender:        r.Sender.ToSummary(),
			Receiver:      r.Receiver.ToSummary(),
		})
	}
	return out, nil
}

// SearchUsers matches display name or email prefix-insensitively, excluding
// the caller. Capped at 20 rows.
func (s *FriendService) SearchUsers(ctx context.Context, userID uuid.UUID, query string) ([]models.ProfileSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.ProfileSummary{}, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("display_name asc").
		Limit(20).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.ProfileSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToSummary())
	}
	return out, nil
}
