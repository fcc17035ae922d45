package dto

import "time"

type NewEventRequest struct {
	Title             string    `json:"title" validate:"required,min=3,max=120"`
	Annotation        string    `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string    `json:"description" validate:"max=7000"`
	Category          uint      `json:"category" validate:"required"`
	Paid              bool      `json:"paid"`
	ParticipantLimit  int       `json:"participant_limit" validate:"gte=0"`
	RequestModeration *bool     `json:"request_moderation"`
	EventDate         time.Time `json:"event_date" validate:"required"`
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
}

// UpdateEventRequest uses pointer fields throughout: an absent field leaves
// the stored value unchanged (merge-patch, not replace).
type UpdateEventRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string    `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string    `json:"description" validate:"omitempty,max=7000"`
	Category          *uint      `json:"category"`
	Paid              *bool      `json:"paid"`
	ParticipantLimit  *int       `json:"participant_limit" validate:"omitempty,gte=0"`
	RequestModeration *bool      `json:"request_moderation"`
	EventDate         *time.Time `json:"event_date"`
	Lat               *float64   `json:"lat"`
	Lon               *float64   `json:"lon"`
	StateAction       *string    `json:"state_action"`
}

type RequestStatusUpdateRequest struct {
	RequestIDs []uint `json:"request_ids" validate:"required,min=1"`
	Status     string `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}

type NewCommentRequest struct {
	Text string `json:"text" validate:"required,min=5,max=5000"`
}

type CommentStatusUpdateRequest struct {
	CommentIDs []uint `json:"comment_ids" validate:"required,min=1"`
	Status     string `json:"status" validate:"required,oneof=PUBLISHED DELETED"`
}

type NewUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email"`
}

type NewCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}
