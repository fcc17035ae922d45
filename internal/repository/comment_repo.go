package repository

import (
	"context"
	"time"

	"eventhub-backend/internal/models"

	"gorm.io/gorm"
)

type CommentFilter struct {
	Text       string
	Users      []uint
	Statuses   []models.CommentStatus
	Events     []uint
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Save(ctx context.Context, comment *models.Comment) error
	FindByIDAuthorEvent(ctx context.Context, id, authorID, eventID uint) (*models.Comment, error)
	FindAllByAuthor(ctx context.Context, authorID uint, status models.CommentStatus) ([]models.Comment, error)
	FindAllByAuthorAndEvent(ctx context.Context, authorID, eventID uint, status models.CommentStatus) ([]models.Comment, error)
	FindAllByIDsAndStatus(ctx context.Context, ids []uint, status models.CommentStatus) ([]models.Comment, error)
	UpdateStatusBatch(ctx context.Context, ids []uint, status models.CommentStatus) error
	DeleteByIDs(ctx context.Context, ids []uint) error
	DeletePublishedByIDAuthorEvent(ctx context.Context, id, authorID, eventID uint) (int64, error)
	Search(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) Save(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) FindByIDAuthorEvent(ctx context.Context, id, authorID, eventID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ? AND event_id = ?", id, authorID, eventID).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindAllByAuthor(ctx context.Context, authorID uint, status models.CommentStatus) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND status = ?", authorID, status).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindAllByAuthorAndEvent(ctx context.Context, authorID, eventID uint, status models.CommentStatus) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND event_id = ? AND status = ?", authorID, eventID, status).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindAllByIDsAndStatus(ctx context.Context, ids []uint, status models.CommentStatus) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, status).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) UpdateStatusBatch(ctx context.Context, ids []uint, status models.CommentStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Comment{}, ids).Error
}

// DeletePublishedByIDAuthorEvent removes the author's own published comment
// and reports how many rows matched.
func (r *commentRepository) DeletePublishedByIDAuthorEvent(ctx context.Context, id, authorID, eventID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ? AND event_id = ? AND status = ?",
			id, authorID, eventID, models.CommentPublished).
		Delete(&models.Comment{})
	return result.RowsAffected, result.Error
}

func (r *commentRepository) Search(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{})

	if filter.Text != "" {
		q = q.Where("text ILIKE ?", "%"+filter.Text+"%")
	}
	if len(filter.Users) > 0 {
		q = q.Where("author_id IN ?", filter.Users)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Events) > 0 {
		q = q.Where("event_id IN ?", filter.Events)
	}
	if filter.RangeStart != nil {
		q = q.Where("created_on > ?", *filter.RangeStart)
	}
	if filter.RangeEnd != nil {
		q = q.Where("created_on < ?", *filter.RangeEnd)
	}

	q = q.Order("id ASC")
	if filter.From > 0 {
		q = q.Offset(filter.From)
	}
	if filter.Size > 0 {
		q = q.Limit(filter.Size)
	}

	var comments []models.Comment
	if err := q.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
