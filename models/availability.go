package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnergyLevel string

const (
	EnergyHigh    EnergyLevel = "high"
	EnergyLow     EnergyLevel = "low"
	EnergyVirtual EnergyLevel = "virtual"
)

func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyHigh, EnergyLow, EnergyVirtual:
		return true
	}
	return false
}

// StringList stores a string slice as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into StringList", value)
}

// Availability is an owner-declared window of free time. Times are wall
// clock ("HH:MM:SS"); EndTime earlier than StartTime means the window runs
// past midnight into the next day.
type Availability struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User        `gorm:"foreignKey:UserID" json:"-"`
	Date         string      `gorm:"size:10;not null;index" json:"date"`
	StartTime    string      `gorm:"size:8;not null" json:"start_time"`
	EndTime      string      `gorm:"size:8;not null" json:"end_time"`
	EnergyLevel  EnergyLevel `gorm:"size:10;not null" json:"energy_level"`
	ActivityTags StringList  `gorm:"type:text" json:"activity_tags"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AvailabilityShare grants one friend or one group visibility of one
// window. Exactly one of the two target columns is set, enforced by a check
// constraint as well as the hook; both targets are foreign keys, so a grant
// to an unknown user or group fails at the store rather than persisting.
type AvailabilityShare struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AvailabilityID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"availability_id"`
	SharedWithUserID  *uuid.UUID `gorm:"type:uuid;index;check:chk_share_one_target,(shared_with_user_id IS NULL) <> (shared_with_group_id IS NULL)" json:"shared_with_user_id,omitempty"`
	SharedWithUser    *User      `gorm:"foreignKey:SharedWithUserID;constraint:OnDelete:CASCADE" json:"-"`
	SharedWithGroupID *uuid.UUID `gorm:"type:uuid;index" json:"shared_with_group_id,omitempty"`
	SharedWithGroup   *Group     `gorm:"foreignKey:SharedWithGroupID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (s *AvailabilityShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if (s.SharedWithUserID == nil) == (s.SharedWithGroupID == nil) {
		return fmt.Errorf("availability share must target exactly one friend or group")
	}
	return nil
}

// Request structs

type CreateAvailabilityRequest struct {
	Date        string      `json:"date" binding:"required"`
	StartTime   string      `json:"start_time" binding:"required"`
	EndTime     string      `json:"end_time" binding:"required"`
	EnergyLevel EnergyLevel `json:"energy_level" binding:"required"`
	Tags        []string    `json:"tags"`
	FriendIDs   []string    `json:"friend_ids"`
	GroupIDs    []string    `json:"group_ids"`
}

type UpdateAvailabilityRequest struct {
	Date        *string      `json:"date"`
	StartTime   *string      `json:"start_time"`
	EndTime     *string      `json:"end_time"`
	EnergyLevel *EnergyLevel `json:"energy_level"`
	Tags        *[]string    `json:"tags"`
	IsActive    *bool        `json:"is_active"`
}

type ShareAvailabilityRequest struct {
	FriendIDs []string `json:"friend_ids"`
	GroupIDs  []string `json:"group_ids"`
}

type AvailableNowRequest struct {
	EnergyLevel     EnergyLevel `json:"energy_level"`
	DurationMinutes int         `json:"duration_minutes"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	FriendIDs       []string    `json:"friend_ids"`
}

// Responses

type AvailabilityResponse struct {
	Availability
	Profile ProfileSummary `json:"profile"`
}

type ShareGrantsResponse struct {
	Friends []ProfileSummary `json:"friends"`
	Groups  []GroupSummary   `json:"groups"`
}
