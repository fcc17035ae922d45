package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request is one user's application to participate in an event.
// Status changes only through self-service cancellation or owner moderation;
// rows are never deleted.
type Request struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	EventID     uint          `gorm:"not null;index" json:"event_id"`
	RequesterID uint          `gorm:"not null;index" json:"requester_id"`
	Status      RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// ConfirmedCount pairs an event id with its live confirmed-request count.
type ConfirmedCount struct {
	EventID uint
	Count   int64
}
