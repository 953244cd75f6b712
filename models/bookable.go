package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibleToFriends Visibility = "friends"
	VisibleToAnyone  Visibility = "everyone"
)

func (v Visibility) Valid() bool {
	return v == VisibleToFriends || v == VisibleToAnyone
}

// TimeSlot is one fixed, bookable range. Booking requires an exact match on
// all three fields; partial overlap is not accepted for bookable links.
type TimeSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s TimeSlot) Equal(other TimeSlot) bool {
	return s.Date == other.Date && s.StartTime == other.StartTime && s.EndTime == other.EndTime
}

// TimeSlotList stores the published slots as a JSON column.
type TimeSlotList []TimeSlot

func (l TimeSlotList) Value() (driver.Value, error) {
	if l == nil {
		l = TimeSlotList{}
	}
	return json.Marshal(l)
}

func (l *TimeSlotList) Scan(value interface{}) error {
	if value == nil {
		*l = TimeSlotList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into TimeSlotList", value)
}

// BookableLink publishes fixed slots behind an unguessable token. Reads via
// token fail once the link is inactive or expired.
type BookableLink struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User         `gorm:"foreignKey:UserID" json:"-"`
	Title        string       `gorm:"not null;size:150" json:"title"`
	Description  string       `gorm:"size:500" json:"description,omitempty"`
	ActivityType string       `gorm:"size:50" json:"activity_type"`
	EnergyLevel  EnergyLevel  `gorm:"size:10;not null" json:"energy_level"`
	TimeSlots    TimeSlotList `gorm:"type:text;not null" json:"time_slots"`
	VisibleTo    Visibility   `gorm:"default:friends;size:10" json:"visible_to"`
	ShareToken   string       `gorm:"uniqueIndex;not null;size:64" json:"share_token"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	ExpiresAt    time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (b *BookableLink) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Booking records a claimed slot. Bookings auto-accept; the companion
// hangout request makes the plan visible to both parties.
type Booking struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BookableLinkID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"bookable_link_id"`
	BookedByUserID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"booked_by_user_id"`
	BookedBy         User          `gorm:"foreignKey:BookedByUserID" json:"-"`
	Slot             TimeSlot      `gorm:"embedded;embeddedPrefix:slot_" json:"slot"`
	Status           RequestStatus `gorm:"default:accepted;size:10" json:"status"`
	HangoutRequestID *uuid.UUID    `gorm:"type:uuid" json:"hangout_request_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Request structs

type CreateBookableLinkRequest struct {
	Title        string      `json:"title" binding:"required"`
	Description  string      `json:"description"`
	ActivityType string      `json:"activity_type"`
	EnergyLevel  EnergyLevel `json:"energy_level" binding:"required"`
	TimeSlots    []TimeSlot  `json:"time_slots" binding:"required"`
	VisibleTo    Visibility  `json:"visible_to"`
	TTLDays      int         `json:"ttl_days"`
}

type CreateBookingRequest struct {
	Slot TimeSlot `json:"slot" binding:"required"`
}

type ToggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Responses

type BookableLinkResponse struct {
	BookableLink
	Profile ProfileSummary `json:"profile"`
}

type BookingResponse struct {
	Booking
	Profile ProfileSummary `json:"profile"`
}
