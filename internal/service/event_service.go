package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"eventhub-backend/internal/apperr"
	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/repository"
	"eventhub-backend/pkg/rabbitmq"
	"eventhub-backend/pkg/statsclient"

	"gorm.io/gorm"
)

// Operator and initiator state actions. Unknown tokens are rejected at the
// boundary of the service, before any business logic runs.
const (
	ActionPublishEvent = "PUBLISH_EVENT"
	ActionRejectEvent  = "REJECT_EVENT"
	ActionSendToReview = "SEND_TO_REVIEW"
	ActionCancelReview = "CANCEL_REVIEW"
)

// Sort options of the public event search.
const (
	SortEventDate = "EVENT_DATE"
	SortViews     = "VIEWS"
)

// EventSnapshot is an event plus its read-time derived values. The derived
// fields are recomputed on every read and never written back.
type EventSnapshot struct {
	Event             models.Event
	ConfirmedRequests int64
	Views             int64
}

// StatsClient is the slice of the collector API the read path needs.
type StatsClient interface {
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]statsclient.Stat, error)
}

// PublicSearch carries the public event search parameters.
type PublicSearch struct {
	Text          string
	Categories    []uint
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          string
	From          int
	Size          int
}

// AdminSearch carries the admin event search parameters.
type AdminSearch struct {
	Users      []uint
	States     []models.EventState
	Categories []uint
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

type EventService interface {
	AddEvent(ctx context.Context, userID uint, req dto.NewEventRequest) (*EventSnapshot, error)
	GetUserEvents(ctx context.Context, userID uint, from, size int) ([]EventSnapshot, error)
	GetUserEvent(ctx context.Context, userID, eventID uint) (*EventSnapshot, error)
	UpdateEventByInitiator(ctx context.Context, userID, eventID uint, req dto.UpdateEventRequest) (*EventSnapshot, error)
	UpdateEventByAdmin(ctx context.Context, eventID uint, req dto.UpdateEventRequest) (*EventSnapshot, error)
	GetEventsAdmin(ctx context.Context, search AdminSearch) ([]EventSnapshot, error)
	GetEventsPublic(ctx context.Context, search PublicSearch) ([]EventSnapshot, error)
	GetPublicEvent(ctx context.Context, eventID uint) (*EventSnapshot, error)
}

type eventService struct {
	eventRepo    repository.EventRepository
	requestRepo  repository.RequestRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	stats        StatsClient
	publisher    *rabbitmq.Publisher
}

func NewEventService(
	eventRepo repository.EventRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	stats StatsClient,
	publisher *rabbitmq.Publisher,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		stats:        stats,
		publisher:    publisher,
	}
}

func (s *eventService) AddEvent(ctx context.Context, userID uint, req dto.NewEventRequest) (*EventSnapshot, error) {
	if err := checkEventDateAhead(req.EventDate, initiatorEventLead); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user with id=%d was not found", userID)
		}
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(ctx, req.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("category with id=%d was not found", req.Category)
		}
		return nil, err
	}

	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}

	event := &models.Event{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		InitiatorID:       userID,
		State:             models.EventPending,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		EventDate:         req.EventDate,
		Lat:               req.Lat,
		Lon:               req.Lon,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	event.Category = category

	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.RouteEventCreated, event)
	}

	return &EventSnapshot{Event: *event}, nil
}

func (s *eventService) GetUserEvents(ctx context.Context, userID uint, from, size int) ([]EventSnapshot, error) {
	events, err := s.eventRepo.FindAllByInitiator(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events)
}

func (s *eventService) GetUserEvent(ctx context.Context, userID, eventID uint) (*EventSnapshot, error) {
	event, err := s.eventRepo.FindByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d initiated by user %d was not found", eventID, userID)
		}
		return nil, err
	}
	return s.enrichOne(ctx, event)
}

// UpdateEventByInitiator applies an owner's partial update. Owners may move
// the event through SEND_TO_REVIEW / CANCEL_REVIEW but never touch a
// published event.
func (s *eventService) UpdateEventByInitiator(ctx context.Context, userID, eventID uint, req dto.UpdateEventRequest) (*EventSnapshot, error) {
	if req.EventDate != nil {
		if err := checkEventDateAhead(*req.EventDate, initiatorEventLead); err != nil {
			return nil, err
		}
	}
	if req.StateAction != nil &&
		*req.StateAction != ActionSendToReview && *req.StateAction != ActionCancelReview {
		return nil, apperr.BadRequestf("state action %q is not allowed for the initiator", *req.StateAction)
	}

	event, err := s.eventRepo.FindByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d initiated by user %d was not found", eventID, userID)
		}
		return nil, err
	}

	if event.State == models.EventPublished {
		return nil, apperr.Conflictf("published events cannot be modified by the initiator")
	}

	if err := s.applyPatch(ctx, event, req); err != nil {
		return nil, err
	}

	if req.StateAction != nil {
		switch *req.StateAction {
		case ActionSendToReview:
			event.State = models.EventPending
		case ActionCancelReview:
			event.State = models.EventCanceled
		}
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, event)
}

// UpdateEventByAdmin applies an operator update, including the terminal
// lifecycle transitions PUBLISH_EVENT and REJECT_EVENT.
func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID uint, req dto.UpdateEventRequest) (*EventSnapshot, error) {
	if req.EventDate != nil {
		if err := checkEventDateAhead(*req.EventDate, adminEventLead); err != nil {
			return nil, err
		}
	}
	if req.StateAction != nil &&
		*req.StateAction != ActionPublishEvent && *req.StateAction != ActionRejectEvent {
		return nil, apperr.BadRequestf("state action %q is not allowed for the admin", *req.StateAction)
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d was not found", eventID)
		}
		return nil, err
	}

	if req.StateAction != nil {
		switch *req.StateAction {
		case ActionPublishEvent:
			if event.State != models.EventPending {
				return nil, apperr.Conflictf("event must be in PENDING state to be published")
			}
		case ActionRejectEvent:
			if event.State == models.EventPublished {
				return nil, apperr.Conflictf("event cannot be canceled if already published")
			}
		}
	}

	if err := s.applyPatch(ctx, event, req); err != nil {
		return nil, err
	}

	if req.StateAction != nil {
		switch *req.StateAction {
		case ActionPublishEvent:
			now := time.Now()
			event.State = models.EventPublished
			event.PublishedOn = &now
		case ActionRejectEvent:
			event.State = models.EventCanceled
		}
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, err
	}

	if s.publisher != nil && req.StateAction != nil {
		switch *req.StateAction {
		case ActionPublishEvent:
			_ = s.publisher.Publish(rabbitmq.RouteEventPublished, event)
		case ActionRejectEvent:
			_ = s.publisher.Publish(rabbitmq.RouteEventCanceled, event)
		}
	}

	return s.enrichOne(ctx, event)
}

func (s *eventService) GetEventsAdmin(ctx context.Context, search AdminSearch) ([]EventSnapshot, error) {
	if err := checkRange(search.RangeStart, search.RangeEnd); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Search(ctx, repository.EventFilter{
		Users:      search.Users,
		States:     search.States,
		Categories: search.Categories,
		RangeStart: search.RangeStart,
		RangeEnd:   search.RangeEnd,
		From:       search.From,
		Size:       search.Size,
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, events)
}

func (s *eventService) GetEventsPublic(ctx context.Context, search PublicSearch) ([]EventSnapshot, error) {
	if err := checkRange(search.RangeStart, search.RangeEnd); err != nil {
		return nil, err
	}
	if search.Sort != "" && search.Sort != SortEventDate && search.Sort != SortViews {
		return nil, apperr.BadRequestf("unknown sort option %q", search.Sort)
	}

	events, err := s.eventRepo.Search(ctx, repository.EventFilter{
		Text:          search.Text,
		Categories:    search.Categories,
		Paid:          search.Paid,
		RangeStart:    search.RangeStart,
		RangeEnd:      search.RangeEnd,
		PublishedOnly: true,
		FutureOnly:    search.RangeStart == nil && search.RangeEnd == nil,
		SortByDate:    search.Sort == SortEventDate,
		From:          search.From,
		Size:          search.Size,
	})
	if err != nil {
		return nil, err
	}

	snapshots, err := s.enrich(ctx, events)
	if err != nil {
		return nil, err
	}

	if search.OnlyAvailable {
		available := snapshots[:0]
		for _, snap := range snapshots {
			if snap.Event.ParticipantLimit == 0 ||
				snap.ConfirmedRequests < int64(snap.Event.ParticipantLimit) {
				available = append(available, snap)
			}
		}
		snapshots = available
	}

	if search.Sort == SortViews {
		sort.SliceStable(snapshots, func(i, j int) bool {
			return snapshots[i].Views > snapshots[j].Views
		})
	}

	return snapshots, nil
}

func (s *eventService) GetPublicEvent(ctx context.Context, eventID uint) (*EventSnapshot, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d was not found", eventID)
		}
		return nil, err
	}
	if event.State != models.EventPublished {
		return nil, apperr.NotFoundf("event with id=%d is not published yet", eventID)
	}
	return s.enrichOne(ctx, event)
}

// applyPatch merges the non-nil fields of the update into the event.
func (s *eventService) applyPatch(ctx context.Context, event *models.Event, req dto.UpdateEventRequest) error {
	if req.Category != nil {
		category, err := s.categoryRepo.FindByID(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("category with id=%d was not found", *req.Category)
			}
			return err
		}
		event.CategoryID = category.ID
		event.Category = category
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Annotation != nil {
		event.Annotation = *req.Annotation
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Paid != nil {
		event.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		event.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		event.RequestModeration = *req.RequestModeration
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.Lat != nil {
		event.Lat = *req.Lat
	}
	if req.Lon != nil {
		event.Lon = *req.Lon
	}
	return nil
}

func (s *eventService) enrichOne(ctx context.Context, event *models.Event) (*EventSnapshot, error) {
	snapshots, err := s.enrich(ctx, []models.Event{*event})
	if err != nil {
		return nil, err
	}
	return &snapshots[0], nil
}

// enrich attaches the live confirmed counts and external view counts to the
// events. Missing stats degrade to zero and never fail the read.
func (s *eventService) enrich(ctx context.Context, events []models.Event) ([]EventSnapshot, error) {
	snapshots := make([]EventSnapshot, len(events))
	if len(events) == 0 {
		return snapshots, nil
	}

	ids := make([]uint, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	counts, err := s.requestRepo.CountConfirmedByEventIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	confirmedByID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		confirmedByID[c.EventID] = c.Count
	}

	viewsByID := s.fetchViews(ctx, ids)

	for i := range events {
		snapshots[i] = EventSnapshot{
			Event:             events[i],
			ConfirmedRequests: confirmedByID[events[i].ID],
			Views:             viewsByID[events[i].ID],
		}
	}
	return snapshots, nil
}

func (s *eventService) fetchViews(ctx context.Context, ids []uint) map[uint]int64 {
	if s.stats == nil {
		return nil
	}

	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = fmt.Sprintf("/events/%d", id)
	}

	now := time.Now()
	stats, err := s.stats.GetStats(ctx, now.AddDate(-10, 0, 0), now.AddDate(10, 0, 0), uris, true)
	if err != nil {
		log.Printf("stats collector unavailable, views default to zero: %v", err)
		return nil
	}

	views := make(map[uint]int64, len(stats))
	for _, stat := range stats {
		raw, ok := strings.CutPrefix(stat.URI, "/events/")
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		views[uint(id)] = stat.Hits
	}
	return views
}
