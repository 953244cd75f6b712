package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/timewindow"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultLinkTTL = 7 * 24 * time.Hour

// BookableService manages token-addressed bookable links and the bookings
// made against them.
type BookableService struct {
	db  *gorm.DB
	bus events.Bus
}

func NewBookableService(db *gorm.DB, bus events.Bus) *BookableService {
	return &BookableService{db: db, bus: bus}
}

func (s *BookableService) CreateLink(ctx context.Context, userID uuid.UUID, req models.CreateBookableLinkRequest) (*models.BookableLink, error) {
	if len(req.TimeSlots) == 0 {
		return nil, fmt.Errorf("%w: at least one time slot required", ErrInvalidInput)
	}
	if !req.EnergyLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown energy level %q", ErrInvalidInput, req.EnergyLevel)
	}

	slots := make(models.TimeSlotList, 0, len(req.TimeSlots))
	for _, slot := range req.TimeSlots {
		if _, err := timewindow.ParseDate(slot.Date); err != nil {
			return nil, fmt.Errorf("%w: bad slot date %q", ErrInvalidTimeRange, slot.Date)
		}
		start, err := normalizeClock(slot.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := normalizeClock(slot.EndTime)
		if err != nil {
			return nil, err
		}
		if start == end {
			return nil, fmt.Errorf("%w: slot must not be zero-length", ErrInvalidTimeRange)
		}
		slots = append(slots, models.TimeSlot{Date: slot.Date, StartTime: start, EndTime: end})
	}

	visibility := req.VisibleTo
	if visibility == "" {
		visibility = models.VisibleToFriends
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, req.VisibleTo)
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return nil, err
	}

	ttl := defaultLinkTTL
	if req.TTLDays > 0 {
		ttl = time.Duration(req.TTLDays) * 24 * time.Hour
	}

	link := models.BookableLink{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		ActivityType: req.ActivityType,
		EnergyLevel:  req.EnergyLevel,
		TimeSlots:    slots,
		VisibleTo:    visibility,
		ShareToken:   token,
		IsActive:     true,
		ExpiresAt:    time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *BookableService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.BookableLink, error) {
	var links []models.BookableLink
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&links).Error
	return links, err
}

// Resolve looks a link up by its token. Missing, inactive, and expired all
// come back as ErrNotFound; a token holder learns nothing beyond "gone".
func (s *BookableService) Resolve(ctx context.Context, token string) (*models.BookableLinkResponse, error) {
	var link models.BookableLink
	err := s.db.WithContext(ctx).Preload("User").First(&link, "share_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !link.IsActive || time.Now().After(link.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &models.BookableLinkResponse{BookableLink: link, Profile: link.User.ToSummary()}, nil
}

// Book claims one published slot. The slot must match a published slot
// exactly; partial overlap is rejected. The booking auto-accepts and spawns
// a companion hangout request best-effort so the plan shows up for both
// sides.
func (s *BookableService) Book(ctx context.Context, bookerID uuid.UUID, token string, req models.CreateBookingRequest) (*models.Booking, error) {
	resolved, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	link := resolved.BookableLink
	if link.UserID == bookerID {
		return nil, fmt.Errorf("%w: cannot book your own link", ErrInvalidInput)
	}

	slot := models.TimeSlot{Date: req.Slot.Date, StartTime: req.Slot.StartTime, EndTime: req.Slot.EndTime}
	if c, err := timewindow.ParseClock(slot.StartTime); err == nil {
		slot.StartTime = c.String()
	}
	if c, err := timewindow.ParseClock(slot.EndTime); err == nil {
		slot.EndTime = c.String()
	}

	published := false
	for _, ps := range link.TimeSlots {
		if ps.Equal(slot) {
			published = true
			break
		}
	}
	if !published {
		return nil, ErrOutOfWindow
	}

	booking := models.Booking{
		BookableLinkID: link.ID,
		BookedByUserID: bookerID,
		Slot:           slot,
		Status:         models.RequestAccepted,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One booking per booker per slot per link.
		var count int64
		err := tx.Model(&models.Booking{}).
			Where("bookable_link_id = ? AND booked_by_user_id = ? AND slot_date = ? AND slot_start_time = ? AND slot_end_time = ?",
				link.ID, bookerID, slot.Date, slot.StartTime, slot.EndTime).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrStorageConflict
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	// The companion request is a convenience; a failure here must not undo
	// the booking.
	hr := models.HangoutRequest{
		SenderID:    bookerID,
		ReceiverID:  link.UserID,
		RequestDate: slot.Date,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Message:     link.Title,
		Status:      models.RequestAccepted,
		Seen:        true,
	}
	if err := s.db.WithContext(ctx).Create(&hr).Error; err != nil {
		log.Printf("⚠️ booking %s: companion request not created: %v", booking.ID, err)
	} else {
		booking.HangoutRequestID = &hr.ID
		if err := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ?", booking.ID).Update("hangout_request_id", hr.ID).Error; err != nil {
			log.Printf("⚠️ booking %s: companion request not linked: %v", booking.ID, err)
		}
	}

	s.bus.Publish(ctx, events.Event{
		Topic:    events.TopicBookingCreated,
		Audience: []uuid.UUID{link.UserID, bookerID},
		Payload: map[string]string{
			"booking_id": booking.ID.String(),
			"link_id":    link.ID.String(),
			"booked_by":  bookerID.String(),
			"date":       slot.Date,
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
		},
	})
	return &booking, nil
}

func (s *BookableService) ownedLink(ctx context.Context, userID, linkID uuid.UUID) (*models.BookableLink, error) {
	var link models.BookableLink
	if err := s.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if link.UserID != userID {
		return nil, ErrNotFound
	}
	return &link, nil
}

// ToggleActive pauses or resumes a link without invalidating its token.
func (s *BookableService) ToggleActive(ctx context.Context, userID, linkID uuid.UUID, active bool) (*models.BookableLink, error) {
	link, err := s.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.BookableLink{}).
		Where("id = ?", linkID).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	link.IsActive = active
	return link, nil
}

// DeleteLink removes the link and its bookings. Existing companion hangout
// requests survive; the plans were already confirmed.
func (s *BookableService) DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error {
	if _, err := s.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bookable_link_id = ?", linkID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BookableLink{}, "id = ?", linkID).Error
	})
}

// ListBookings returns the bookings made against one of the caller's links.
func (s *BookableService) ListBookings(ctx context.Context, userID, linkID uuid.UUID) ([]models.BookingResponse, error) {
	if _, err := s.ownedLink(ctx, userID, linkID); err != nil {
		return nil, err
	}

	var bookings []models.Booking
	err := s.db.WithContext(ctx).Preload("BookedBy").
		Where("bookable_link_id = ?", linkID).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, models.BookingResponse{Booking: b, Profile: b.BookedBy.ToSummary()})
	}
	return out, nil
}
