package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService handles the per-request chat thread. Only the two request
// parties can read or write it.
type MessageService struct {
	db  *gorm.DB
	bus events.Bus
}

func NewMessageService(db *gorm.DB, bus events.Bus) *MessageService {
	return &MessageService{db: db, bus: bus}
}

// thread loads the request and checks the actor is a party to it.
func (s *MessageService) thread(ctx context.Context, actorID, requestID uuid.UUID) (*models.HangoutRequest, error) {
	var hr models.HangoutRequest
	if err := s.db.WithContext(ctx).First(&hr, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if hr.SenderID != actorID && hr.ReceiverID != actorID {
		return nil, ErrNotFound
	}
	return &hr, nil
}

func (s *MessageService) Send(ctx context.Context, senderID, requestID uuid.UUID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body must not be empty", ErrInvalidInput)
	}

	hr, err := s.thread(ctx, senderID, requestID)
	if err != nil {
		return nil, err
	}

	msg := models.Message{RequestID: requestID, SenderID: senderID, Body: body}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	other := hr.SenderID
	if other == senderID {
		other = hr.ReceiverID
	}
	s.bus.Publish(ctx, events.Event{
		Topic:    events.TopicMessageNew,
		Audience: []uuid.UUID{other},
		Payload: map[string]string{
			"message_id": msg.ID.String(),
			"request_id": requestID.String(),
			"sender_id":  senderID.String(),
		},
	})
	return &msg, nil
}

func (s *MessageService) List(ctx context.Context, actorID, requestID uuid.UUID) ([]models.MessageResponse, error) {
	if _, err := s.thread(ctx, actorID, requestID); err != nil {
		return nil, err
	}

	var msgs []models.Message
	err := s.db.WithContext(ctx).Preload("Sender").
		Where("request_id = ?", requestID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.MessageResponse{Message: m, Sender: m.Sender.ToSummary()})
	}
	return out, nil
}

// MarkRead marks every message in the thread the actor did not send.
func (s *MessageService) MarkRead(ctx context.Context, actorID, requestID uuid.UUID) error {
	if _, err := s.thread(ctx, actorID, requestID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Message{}).
		Where("request_id = ? AND sender_id <> ? AND is_read = ?", requestID, actorID, false).
		Update("is_read", true).Error
}

// UnreadCountForThread counts unread messages addressed to the actor in one
// request thread.
func (s *MessageService) UnreadCountForThread(ctx context.Context, actorID, requestID uuid.UUID) (int64, error) {
	if _, err := s.thread(ctx, actorID, requestID); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("request_id = ? AND sender_id <> ? AND is_read = ?", requestID, actorID, false).
		Count(&count).Error
	return count, err
}

// UnreadCount counts unread messages addressed to the actor across all of
// their request threads.
func (s *MessageService) UnreadCount(ctx context.Context, actorID uuid.UUID) (int64, error) {
	var requestIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.HangoutRequest{}).
		Where("sender_id = ? OR receiver_id = ?", actorID, actorID).
		Pluck("id", &requestIDs).Error
	if err != nil {
		return 0, err
	}
	if len(requestIDs) == 0 {
		return 0, nil
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("request_id IN ? AND sender_id <> ? AND is_read = ?", requestIDs, actorID, false).
		Count(&count).Error
	return count, err
}
