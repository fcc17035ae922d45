package dto

import (
	"time"

	"eventhub-backend/internal/models"
)

type RequestResponse struct {
	ID          uint                 `json:"id"`
	EventID     uint                 `json:"event_id"`
	RequesterID uint                 `json:"requester_id"`
	Status      models.RequestStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

type RequestStatusUpdateResult struct {
	ConfirmedRequests []RequestResponse `json:"confirmed_requests"`
	RejectedRequests  []RequestResponse `json:"rejected_requests"`
}

// EventResponse is the read-side snapshot: confirmed_requests and views are
// derived at read time, never persisted.
type EventResponse struct {
	ID                uint              `json:"id"`
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description,omitempty"`
	Category          *models.Category  `json:"category,omitempty"`
	InitiatorID       uint              `json:"initiator_id"`
	State             models.EventState `json:"state"`
	Paid              bool              `json:"paid"`
	ParticipantLimit  int               `json:"participant_limit"`
	RequestModeration bool              `json:"request_moderation"`
	EventDate         time.Time         `json:"event_date"`
	Lat               float64           `json:"lat"`
	Lon               float64           `json:"lon"`
	PublishedOn       *time.Time        `json:"published_on,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	ConfirmedRequests int64             `json:"confirmed_requests"`
	Views             int64             `json:"views"`
}

type CommentResponse struct {
	ID        uint                 `json:"id"`
	Text      string               `json:"text"`
	EventID   uint                 `json:"event_id"`
	AuthorID  uint                 `json:"author_id"`
	Status    models.CommentStatus `json:"status"`
	CreatedOn time.Time            `json:"created_on"`
}

type ErrorResponse struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func ToRequestResponse(r *models.Request) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		RequesterID: r.RequesterID,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}

func ToListOfRequestResponse(requests []models.Request) []RequestResponse {
	resp := make([]RequestResponse, len(requests))
	for i := range requests {
		resp[i] = ToRequestResponse(&requests[i])
	}
	return resp
}

func ToEventResponse(e *models.Event, confirmed, views int64) EventResponse {
	return EventResponse{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          e.Category,
		InitiatorID:       e.InitiatorID,
		State:             e.State,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		EventDate:         e.EventDate,
		Lat:               e.Lat,
		Lon:               e.Lon,
		PublishedOn:       e.PublishedOn,
		CreatedAt:         e.CreatedAt,
		ConfirmedRequests: confirmed,
		Views:             views,
	}
}

func ToCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Text:      c.Text,
		EventID:   c.EventID,
		AuthorID:  c.AuthorID,
		Status:    c.Status,
		CreatedOn: c.CreatedOn,
	}
}

func ToListOfCommentResponse(comments []models.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = ToCommentResponse(&comments[i])
	}
	return resp
}
