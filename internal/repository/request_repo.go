package repository

import (
	"context"

	"eventhub-backend/internal/models"

	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.Request) error
	FindByID(ctx context.Context, id uint) (*models.Request, error)
	FindAllByEventID(ctx context.Context, eventID uint) ([]models.Request, error)
	FindAllByRequesterID(ctx context.Context, requesterID uint) ([]models.Request, error)
	FindAllByIDs(ctx context.Context, tx *gorm.DB, eventID uint, ids []uint) ([]models.Request, error)
	CountConfirmed(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, requestID uint, status models.RequestStatus) error
	UpdateStatusBatch(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error
	GetDB() *gorm.DB
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *requestRepository) Create(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return tx.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindAllByEventID(ctx context.Context, eventID uint) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) FindAllByRequesterID(ctx context.Context, requesterID uint) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// FindAllByIDs resolves a batch of request ids within one event. The event
// scope keeps moderation from ever touching another event's requests.
func (r *requestRepository) FindAllByIDs(ctx context.Context, tx *gorm.DB, eventID uint, ids []uint) ([]models.Request, error) {
	var requests []models.Request
	err := tx.WithContext(ctx).
		Where("event_id = ? AND id IN ?", eventID, ids).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// CountConfirmed is the capacity oracle: the live number of CONFIRMED
// requests for one event. Callers must not reuse a count across two
// admission decisions.
func (r *requestRepository) CountConfirmed(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Request{}).
		Where("event_id = ? AND status = ?", eventID, models.RequestConfirmed).
		Count(&count).Error
	return count, err
}

func (r *requestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) ([]models.ConfirmedCount, error) {
	var counts []models.ConfirmedCount
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ? AND status = ?", eventIDs, models.RequestConfirmed).
		Group("event_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, requestID uint, status models.RequestStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", requestID).
		Update("status", status).Error
}

func (r *requestRepository) UpdateStatusBatch(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.Request{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
