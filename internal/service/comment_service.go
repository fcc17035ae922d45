package service

import (
	"context"
	"errors"
	"time"

	"eventhub-backend/internal/apperr"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/moderation"
	"eventhub-backend/internal/repository"

	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(ctx context.Context, userID, eventID uint, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, userID, eventID, commentID uint, text string) (*models.Comment, error)
	GetComment(ctx context.Context, userID, eventID, commentID uint) (*models.Comment, error)
	GetUserComments(ctx context.Context, userID uint) ([]models.Comment, error)
	GetUserEventComments(ctx context.Context, userID, eventID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, userID, eventID, commentID uint) error
	ModerateComments(ctx context.Context, commentIDs []uint, status models.CommentStatus) ([]models.Comment, error)
	GetCommentsAdmin(ctx context.Context, filter repository.CommentFilter) ([]models.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	eventRepo   repository.EventRepository
	userRepo    repository.UserRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
	}
}

func (s *commentService) AddComment(ctx context.Context, userID, eventID uint, text string) (*models.Comment, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user with id=%d was not found", userID)
		}
		return nil, err
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d was not found", eventID)
		}
		return nil, err
	}
	if event.State != models.EventPublished {
		return nil, apperr.Conflictf("comments are not allowed on unpublished events")
	}

	comment := &models.Comment{
		Text:      text,
		EventID:   eventID,
		AuthorID:  userID,
		Status:    models.CommentPending,
		CreatedOn: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment puts the edited comment back into the moderation queue.
// A comment still pending moderation cannot be edited.
func (s *commentService) UpdateComment(ctx context.Context, userID, eventID, commentID uint, text string) (*models.Comment, error) {
	comment, err := s.findOwnComment(ctx, commentID, userID, eventID)
	if err != nil {
		return nil, err
	}
	if comment.Status == models.CommentPending {
		return nil, apperr.Conflictf("comments pending moderation cannot be updated")
	}

	comment.Text = text
	comment.Status = models.CommentPending
	comment.CreatedOn = time.Now()
	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) GetComment(ctx context.Context, userID, eventID, commentID uint) (*models.Comment, error) {
	comment, err := s.findOwnComment(ctx, commentID, userID, eventID)
	if err != nil {
		return nil, err
	}
	if comment.Status == models.CommentPending {
		return nil, apperr.Conflictf("comments pending moderation cannot be reviewed")
	}
	return comment, nil
}

func (s *commentService) GetUserComments(ctx context.Context, userID uint) ([]models.Comment, error) {
	return s.commentRepo.FindAllByAuthor(ctx, userID, models.CommentPublished)
}

func (s *commentService) GetUserEventComments(ctx context.Context, userID, eventID uint) ([]models.Comment, error) {
	return s.commentRepo.FindAllByAuthorAndEvent(ctx, userID, eventID, models.CommentPublished)
}

func (s *commentService) DeleteComment(ctx context.Context, userID, eventID, commentID uint) error {
	affected, err := s.commentRepo.DeletePublishedByIDAuthorEvent(ctx, commentID, userID, eventID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFoundf("comment with id=%d by user %d for event %d is pending or does not exist",
			commentID, userID, eventID)
	}
	return nil
}

// ModerateComments routes a whole batch of pending comments to one terminal
// outcome: PUBLISHED keeps them, anything else removes them.
func (s *commentService) ModerateComments(ctx context.Context, commentIDs []uint, status models.CommentStatus) ([]models.Comment, error) {
	pending, err := s.commentRepo.FindAllByIDsAndStatus(ctx, commentIDs, models.CommentPending)
	if err != nil {
		return nil, err
	}

	decision, err := moderation.Decide(pending, len(commentIDs), status == models.CommentPublished)
	if err != nil {
		return nil, err
	}

	if len(decision.Accepted) > 0 {
		if err := s.commentRepo.UpdateStatusBatch(ctx, commentIDs, models.CommentPublished); err != nil {
			return nil, err
		}
		for i := range decision.Accepted {
			decision.Accepted[i].Status = models.CommentPublished
		}
		return decision.Accepted, nil
	}

	if err := s.commentRepo.DeleteByIDs(ctx, commentIDs); err != nil {
		return nil, err
	}
	return []models.Comment{}, nil
}

func (s *commentService) GetCommentsAdmin(ctx context.Context, filter repository.CommentFilter) ([]models.Comment, error) {
	if err := checkRange(filter.RangeStart, filter.RangeEnd); err != nil {
		return nil, err
	}
	return s.commentRepo.Search(ctx, filter)
}

func (s *commentService) findOwnComment(ctx context.Context, commentID, userID, eventID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByIDAuthorEvent(ctx, commentID, userID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("comment with id=%d by user %d for event %d was not found",
				commentID, userID, eventID)
		}
		return nil, err
	}
	return comment, nil
}
