package models

import "time"

type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

type Event struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"not null" json:"title"`
	Annotation        string     `gorm:"not null" json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        uint       `gorm:"not null" json:"category_id"`
	InitiatorID       uint       `gorm:"not null;index" json:"initiator_id"`
	State             EventState `gorm:"type:varchar(20);not null;default:'PENDING'" json:"state"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `gorm:"not null;default:0" json:"participant_limit"`
	RequestModeration bool       `gorm:"not null;default:true" json:"request_moderation"`
	EventDate         time.Time  `gorm:"not null" json:"event_date"`
	Lat               float64    `json:"lat"`
	Lon               float64    `json:"lon"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Initiator *User     `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
}
