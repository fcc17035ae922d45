package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub-backend/internal/apperr"
	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/repository"
	"eventhub-backend/pkg/statsclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn             func(ctx context.Context, event *models.Event) error
	saveFn               func(ctx context.Context, event *models.Event) error
	findByIDFn           func(ctx context.Context, id uint) (*models.Event, error)
	findByIDAndInitFn    func(ctx context.Context, id, initiatorID uint) (*models.Event, error)
	findAllByInitiatorFn func(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error)
	searchFn             func(ctx context.Context, filter repository.EventFilter) ([]models.Event, error)
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	event.ID = 1
	return nil
}

func (m *mockEventRepo) Save(ctx context.Context, event *models.Event) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockEventRepo) FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
	return m.findByIDAndInitFn(ctx, id, initiatorID)
}

func (m *mockEventRepo) FindAllByInitiator(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error) {
	return m.findAllByInitiatorFn(ctx, initiatorID, from, size)
}

func (m *mockEventRepo) Search(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	return m.searchFn(ctx, filter)
}

// --- Mock RequestRepository ---

type mockRequestRepo struct {
	countByEventIDsFn func(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return nil
}
func (m *mockRequestRepo) FindByID(ctx context.Context, id uint) (*models.Request, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockRequestRepo) FindAllByEventID(ctx context.Context, eventID uint) ([]models.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) FindAllByRequesterID(ctx context.Context, requesterID uint) ([]models.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) FindAllByIDs(ctx context.Context, tx *gorm.DB, eventID uint, ids []uint) ([]models.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) CountConfirmed(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	return 0, nil
}
func (m *mockRequestRepo) CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error) {
	if m.countByEventIDsFn != nil {
		return m.countByEventIDsFn(ctx, eventIDs)
	}
	return nil, nil
}
func (m *mockRequestRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, requestID uint, status models.RequestStatus) error {
	return nil
}
func (m *mockRequestRepo) UpdateStatusBatch(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error {
	return nil
}
func (m *mockRequestRepo) GetDB() *gorm.DB { return nil }

// --- Mock UserRepository ---

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &models.User{ID: id, Name: "user"}, nil
}
func (m *mockUserRepo) FindAll(ctx context.Context, ids []uint, from, size int) ([]models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Delete(ctx context.Context, id uint) (int64, error) { return 0, nil }

// --- Mock CategoryRepository ---

type mockCategoryRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.Category, error)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error { return nil }
func (m *mockCategoryRepo) Save(ctx context.Context, category *models.Category) error   { return nil }
func (m *mockCategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &models.Category{ID: id, Name: "concerts"}, nil
}
func (m *mockCategoryRepo) FindAll(ctx context.Context, from, size int) ([]models.Category, error) {
	return nil, nil
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id uint) (int64, error) { return 0, nil }

// --- Mock StatsClient ---

type mockStatsClient struct {
	getStatsFn func(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]statsclient.Stat, error)
}

func (m *mockStatsClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]statsclient.Stat, error) {
	return m.getStatsFn(ctx, start, end, uris, unique)
}

// --- Helpers ---

func newEventSvc(eventRepo *mockEventRepo, requestRepo *mockRequestRepo, stats StatsClient) EventService {
	if requestRepo == nil {
		requestRepo = &mockRequestRepo{}
	}
	return NewEventService(eventRepo, requestRepo, &mockUserRepo{}, &mockCategoryRepo{}, stats, nil)
}

func sampleNewEvent(eventDate time.Time) dto.NewEventRequest {
	return dto.NewEventRequest{
		Title:            "Go meetup",
		Annotation:       "An evening of talks about building backends in Go",
		Category:         1,
		ParticipantLimit: 50,
		EventDate:        eventDate,
	}
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func TestAddEvent_Success(t *testing.T) {
	svc := newEventSvc(&mockEventRepo{}, nil, nil)

	snapshot, err := svc.AddEvent(context.Background(), 10, sampleNewEvent(time.Now().Add(3*time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, models.EventPending, snapshot.Event.State)
	assert.Equal(t, uint(10), snapshot.Event.InitiatorID)
	assert.True(t, snapshot.Event.RequestModeration, "moderation defaults to enabled")
	assert.Equal(t, int64(0), snapshot.ConfirmedRequests)
}

func TestAddEvent_DateTooSoon(t *testing.T) {
	svc := newEventSvc(&mockEventRepo{}, nil, nil)

	// one hour ahead: initiators need at least two
	_, err := svc.AddEvent(context.Background(), 10, sampleNewEvent(time.Now().Add(time.Hour)))

	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestAddEvent_UnknownCategory(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, &mockRequestRepo{}, &mockUserRepo{}, &mockCategoryRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}, nil, nil)

	_, err := svc.AddEvent(context.Background(), 10, sampleNewEvent(time.Now().Add(3*time.Hour)))

	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUpdateEventByAdmin_Publish(t *testing.T) {
	var saved *models.Event
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventPending}, nil
		},
		saveFn: func(ctx context.Context, event *models.Event) error {
			saved = event
			return nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	action := ActionPublishEvent
	snapshot, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{StateAction: &action})

	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, snapshot.Event.State)
	require.NotNil(t, saved)
	require.NotNil(t, saved.PublishedOn)
}

func TestUpdateEventByAdmin_PublishNotPending(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventCanceled}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	action := ActionPublishEvent
	_, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{StateAction: &action})

	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateEventByAdmin_RejectPublished(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventPublished}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	action := ActionRejectEvent
	_, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{StateAction: &action})

	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateEventByAdmin_RejectPending(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventPending}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	action := ActionRejectEvent
	snapshot, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{StateAction: &action})

	require.NoError(t, err)
	assert.Equal(t, models.EventCanceled, snapshot.Event.State)
}

func TestUpdateEventByAdmin_UnknownStateAction(t *testing.T) {
	svc := newEventSvc(&mockEventRepo{}, nil, nil)

	action := "MAKE_IT_SO"
	_, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{StateAction: &action})

	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

// Admins get the shorter one-hour buffer on the event date.
func TestUpdateEventByAdmin_DateNinetyMinutesAhead(t *testing.T) {
	date := time.Now().Add(90 * time.Minute)
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventPending}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	snapshot, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventRequest{EventDate: &date})

	require.NoError(t, err)
	assert.Equal(t, date, snapshot.Event.EventDate)
}

func TestUpdateEventByInitiator_DateNinetyMinutesAhead(t *testing.T) {
	date := time.Now().Add(90 * time.Minute)
	svc := newEventSvc(&mockEventRepo{}, nil, nil)

	_, err := svc.UpdateEventByInitiator(context.Background(), 10, 1, dto.UpdateEventRequest{EventDate: &date})

	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestUpdateEventByInitiator_PublishedIsImmutable(t *testing.T) {
	repo := &mockEventRepo{
		findByIDAndInitFn: func(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
			return &models.Event{ID: id, InitiatorID: initiatorID, State: models.EventPublished}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	_, err := svc.UpdateEventByInitiator(context.Background(), 10, 1, dto.UpdateEventRequest{
		Title: strPtr("new title"),
	})

	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateEventByInitiator_MergePatch(t *testing.T) {
	var saved *models.Event
	repo := &mockEventRepo{
		findByIDAndInitFn: func(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
			return &models.Event{
				ID:          id,
				InitiatorID: initiatorID,
				State:       models.EventCanceled,
				Title:       "old title",
				Annotation:  "old annotation",
				Paid:        true,
			}, nil
		},
		saveFn: func(ctx context.Context, event *models.Event) error {
			saved = event
			return nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	action := ActionSendToReview
	snapshot, err := svc.UpdateEventByInitiator(context.Background(), 10, 1, dto.UpdateEventRequest{
		Annotation:  strPtr("a fresh annotation for the very same event"),
		StateAction: &action,
	})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "old title", saved.Title, "absent fields stay unchanged")
	assert.True(t, saved.Paid)
	assert.Equal(t, "a fresh annotation for the very same event", saved.Annotation)
	assert.Equal(t, models.EventPending, snapshot.Event.State, "SEND_TO_REVIEW resubmits the event")
}

func TestGetPublicEvent_NotPublished(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, State: models.EventPending}, nil
		},
	}
	svc := newEventSvc(repo, nil, nil)

	_, err := svc.GetPublicEvent(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestEnrichment_AttachesViewsAndConfirmed(t *testing.T) {
	repo := &mockEventRepo{
		findAllByInitiatorFn: func(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error) {
			return []models.Event{{ID: 1}, {ID: 2}}, nil
		},
	}
	requestRepo := &mockRequestRepo{
		countByEventIDsFn: func(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error) {
			return []models.ConfirmedCount{{EventID: 1, Count: 7}}, nil
		},
	}
	stats := &mockStatsClient{
		getStatsFn: func(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]statsclient.Stat, error) {
			assert.True(t, unique)
			assert.Contains(t, uris, "/events/1")
			assert.Contains(t, uris, "/events/2")
			return []statsclient.Stat{{URI: "/events/1", Hits: 42}}, nil
		},
	}
	svc := newEventSvc(repo, requestRepo, stats)

	snapshots, err := svc.GetUserEvents(context.Background(), 10, 0, 10)

	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, int64(7), snapshots[0].ConfirmedRequests)
	assert.Equal(t, int64(42), snapshots[0].Views)
	assert.Equal(t, int64(0), snapshots[1].ConfirmedRequests, "absent ids map to zero")
	assert.Equal(t, int64(0), snapshots[1].Views)
}

func TestEnrichment_StatsFailureDegradesToZero(t *testing.T) {
	repo := &mockEventRepo{
		findAllByInitiatorFn: func(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error) {
			return []models.Event{{ID: 1}}, nil
		},
	}
	stats := &mockStatsClient{
		getStatsFn: func(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]statsclient.Stat, error) {
			return nil, errors.New("collector is down")
		},
	}
	svc := newEventSvc(repo, nil, stats)

	snapshots, err := svc.GetUserEvents(context.Background(), 10, 0, 10)

	require.NoError(t, err, "missing stats never fail the read")
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(0), snapshots[0].Views)
}

func TestGetEventsPublic_OnlyAvailable(t *testing.T) {
	repo := &mockEventRepo{
		searchFn: func(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
			assert.True(t, filter.PublishedOnly)
			return []models.Event{
				{ID: 1, State: models.EventPublished, ParticipantLimit: 2},
				{ID: 2, State: models.EventPublished, ParticipantLimit: 0},
				{ID: 3, State: models.EventPublished, ParticipantLimit: 5},
			}, nil
		},
	}
	requestRepo := &mockRequestRepo{
		countByEventIDsFn: func(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error) {
			return []models.ConfirmedCount{
				{EventID: 1, Count: 2}, // full
				{EventID: 3, Count: 4}, // one seat left
			}, nil
		},
	}
	svc := newEventSvc(repo, requestRepo, nil)

	snapshots, err := svc.GetEventsPublic(context.Background(), PublicSearch{OnlyAvailable: true})

	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, uint(2), snapshots[0].Event.ID, "unlimited events are always available")
	assert.Equal(t, uint(3), snapshots[1].Event.ID)
}

func TestGetEventsPublic_InvertedRange(t *testing.T) {
	svc := newEventSvc(&mockEventRepo{}, nil, nil)

	start := time.Now().Add(2 * time.Hour)
	end := time.Now().Add(time.Hour)
	_, err := svc.GetEventsPublic(context.Background(), PublicSearch{RangeStart: &start, RangeEnd: &end})

	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}
