package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestAccepted, RequestDeclined, RequestCancelled:
		return true
	}
	return false
}

// HangoutRequest is a proposal from sender to receiver to meet at a
// specific date and time range, optionally anchored to one of the
// receiver's availability windows.
type HangoutRequest struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender         User          `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver       User          `gorm:"foreignKey:ReceiverID" json:"-"`
	AvailabilityID *uuid.UUID    `gorm:"type:uuid;index" json:"availability_id,omitempty"`
	RequestDate    string        `gorm:"size:10;not null" json:"request_date"`
	StartTime      string        `gorm:"size:8;not null" json:"start_time"`
	EndTime        string        `gorm:"size:8;not null" json:"end_time"`
	Message        string        `gorm:"size:500" json:"message,omitempty"`
	Status         RequestStatus `gorm:"default:pending;size:10;index" json:"status"`
	Seen           bool          `gorm:"default:false" json:"seen"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (r *HangoutRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Request structs

type CreateHangoutRequest struct {
	ReceiverID     string `json:"receiver_id" binding:"required"`
	AvailabilityID string `json:"availability_id"`
	RequestDate    string `json:"request_date" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time" binding:"required"`
	Message        string `json:"message"`
}

type UpdateRequestStatusRequest struct {
	Status RequestStatus `json:"status" binding:"required"`
}

// Responses

type HangoutRequestResponse struct {
	HangoutRequest
	Sender   ProfileSummary `json:"sender"`
	Receiver ProfileSummary `json:"receiver"`
}

// PlanResponse is a confirmed hangout as shown in the plans list; Friend is
// the other party from the viewer's perspective.
type PlanResponse struct {
	ID          uuid.UUID      `json:"id"`
	Friend      ProfileSummary `json:"friend"`
	RequestDate string         `json:"request_date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Activity    string         `json:"activity"`
	Status      RequestStatus  `json:"status"`
}

// ClearHistoryResult reports per-item outcomes of a bulk delete; the batch
// is not atomic.
type ClearHistoryResult struct {
	Deleted int                  `json:"deleted"`
	Failed  map[uuid.UUID]string `json:"failed,omitempty"`
}
