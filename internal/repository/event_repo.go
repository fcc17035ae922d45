package repository

import (
	"context"
	"time"

	"eventhub-backend/internal/models"

	"gorm.io/gorm"
)

// EventFilter collects the optional predicates of the admin and public
// event searches. Zero values mean "not filtered".
type EventFilter struct {
	Users         []uint
	States        []models.EventState
	Categories    []uint
	Text          string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	PublishedOnly bool
	FutureOnly    bool
	SortByDate    bool
	From          int
	Size          int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error)
	FindAllByInitiator(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error)
	Search(ctx context.Context, filter EventFilter) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Save(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Preload("Category").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given
// transaction. Every capacity decision for the event serializes on this lock.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND initiator_id = ?", id, initiatorID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAllByInitiator(ctx context.Context, initiatorID uint, from, size int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("initiator_id = ?", initiatorID).
		Order("id DESC").
		Offset(from).Limit(size).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Search(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{}).Preload("Category")

	if filter.PublishedOnly {
		q = q.Where("state = ?", models.EventPublished)
	}
	if len(filter.Users) > 0 {
		q = q.Where("initiator_id IN ?", filter.Users)
	}
	if len(filter.States) > 0 {
		q = q.Where("state IN ?", filter.States)
	}
	if len(filter.Categories) > 0 {
		q = q.Where("category_id IN ?", filter.Categories)
	}
	if filter.Text != "" {
		pattern := "%" + filter.Text + "%"
		q = q.Where("annotation ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Paid != nil {
		q = q.Where("paid = ?", *filter.Paid)
	}
	switch {
	case filter.RangeStart != nil && filter.RangeEnd != nil:
		q = q.Where("event_date BETWEEN ? AND ?", *filter.RangeStart, *filter.RangeEnd)
	case filter.RangeStart != nil:
		q = q.Where("event_date > ?", *filter.RangeStart)
	case filter.RangeEnd != nil:
		q = q.Where("event_date < ?", *filter.RangeEnd)
	case filter.FutureOnly:
		q = q.Where("event_date > ?", time.Now())
	}

	if filter.SortByDate {
		q = q.Order("event_date ASC")
	} else {
		q = q.Order("id DESC")
	}
	if filter.From > 0 {
		q = q.Offset(filter.From)
	}
	if filter.Size > 0 {
		q = q.Limit(filter.Size)
	}

	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
