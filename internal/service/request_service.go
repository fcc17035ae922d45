package service

import (
	"context"
	"errors"

	"eventhub-backend/internal/apperr"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/repository"

	"gorm.io/gorm"
)

// RequestStatusResult is the outcome of one batch moderation call.
type RequestStatusResult struct {
	Confirmed []models.Request
	Rejected  []models.Request
}

type RequestService interface {
	CreateRequest(ctx context.Context, userID, eventID uint) (*models.Request, error)
	CancelRequest(ctx context.Context, userID, requestID uint) (*models.Request, error)
	GetEventRequests(ctx context.Context, userID, eventID uint) ([]models.Request, error)
	GetUserRequests(ctx context.Context, userID uint) ([]models.Request, error)
	UpdateRequestsStatus(ctx context.Context, userID, eventID uint, requestIDs []uint, status models.RequestStatus) (*RequestStatusResult, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	eventRepo   repository.EventRepository
	userRepo    repository.UserRepository
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
	}
}

// CreateRequest admits one participation request. The event row is locked
// for the whole check-then-act unit, so two requests racing for the last
// open seat serialize on the lock and the capacity check stays exact.
func (s *requestService) CreateRequest(ctx context.Context, userID, eventID uint) (*models.Request, error) {
	var result *models.Request

	err := s.requestRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("event with id=%d was not found", eventID)
			}
			return err
		}

		if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("user with id=%d was not found", userID)
			}
			return err
		}

		if event.InitiatorID == userID {
			return apperr.Conflictf("initiator of the event cannot be a requester")
		}

		if event.State != models.EventPublished {
			return apperr.Conflictf("cannot participate in an unpublished event")
		}

		if event.ParticipantLimit > 0 {
			confirmed, err := s.requestRepo.CountConfirmed(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if confirmed >= int64(event.ParticipantLimit) {
				return apperr.Conflictf("participation limit expired")
			}
		}

		request := &models.Request{
			EventID:     eventID,
			RequesterID: userID,
			Status:      initialRequestStatus(event),
		}
		if err := s.requestRepo.Create(ctx, tx, request); err != nil {
			return err
		}

		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelRequest is self-service only: the requester may cancel from any
// state, and CANCELED is absorbing. The event row is locked so a slot
// freed by the cancellation is serialized with concurrent admissions.
func (s *requestService) CancelRequest(ctx context.Context, userID, requestID uint) (*models.Request, error) {
	var result *models.Request

	err := s.requestRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("request with id=%d was not found", requestID)
			}
			return err
		}

		if request.RequesterID != userID {
			return apperr.Conflictf("user with id=%d is not the requester and cannot cancel the request", userID)
		}

		if _, err := s.eventRepo.FindByIDForUpdate(ctx, tx, request.EventID); err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := s.requestRepo.UpdateStatus(ctx, tx, requestID, models.RequestCanceled); err != nil {
			return err
		}

		request.Status = models.RequestCanceled
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *requestService) GetEventRequests(ctx context.Context, userID, eventID uint) ([]models.Request, error) {
	if _, err := s.eventRepo.FindByIDAndInitiator(ctx, eventID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("event with id=%d initiated by user %d was not found", eventID, userID)
		}
		return nil, err
	}
	return s.requestRepo.FindAllByEventID(ctx, eventID)
}

func (s *requestService) GetUserRequests(ctx context.Context, userID uint) ([]models.Request, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user with id=%d was not found", userID)
		}
		return nil, err
	}
	return s.requestRepo.FindAllByRequesterID(ctx, userID)
}

// UpdateRequestsStatus is the batch moderation operation. All preconditions
// are all-or-nothing: a failure leaves zero requests mutated. Confirmation
// is a strict sequential greedy allocation in the order the caller supplied
// the ids; once the reserve runs out, every remaining request is rejected.
func (s *requestService) UpdateRequestsStatus(ctx context.Context, userID, eventID uint, requestIDs []uint, status models.RequestStatus) (*RequestStatusResult, error) {
	if status != models.RequestConfirmed && status != models.RequestRejected {
		return nil, apperr.BadRequestf("status must be CONFIRMED or REJECTED, got %q", status)
	}

	var result *RequestStatusResult

	err := s.requestRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("event with id=%d was not found", eventID)
			}
			return err
		}
		if event.InitiatorID != userID {
			return apperr.NotFoundf("event with id=%d initiated by user %d was not found", eventID, userID)
		}

		requests, err := s.requestRepo.FindAllByIDs(ctx, tx, eventID, requestIDs)
		if err != nil {
			return err
		}
		requests = orderByIDs(requests, requestIDs)

		// Moderation disabled or unlimited capacity: every admitted request
		// was auto-confirmed at creation. The status is persisted anyway so
		// the returned "confirmed" matches stored state. CANCELED and
		// REJECTED are terminal and must not be resurrected here.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			for i := range requests {
				if requests[i].Status != models.RequestPending && requests[i].Status != models.RequestConfirmed {
					return apperr.Conflictf("request with id=%d cannot be confirmed from status %s",
						requests[i].ID, requests[i].Status)
				}
			}
			if err := s.requestRepo.UpdateStatusBatch(ctx, tx, idsOf(requests), models.RequestConfirmed); err != nil {
				return err
			}
			markStatus(requests, models.RequestConfirmed)
			result = &RequestStatusResult{Confirmed: requests, Rejected: []models.Request{}}
			return nil
		}

		confirmed, err := s.requestRepo.CountConfirmed(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if confirmed >= int64(event.ParticipantLimit) {
			return apperr.Conflictf("limit of requests for participation is over")
		}

		for i := range requests {
			if requests[i].Status != models.RequestPending {
				return apperr.Conflictf("all requests must be in status PENDING")
			}
		}

		if status == models.RequestRejected {
			if err := s.requestRepo.UpdateStatusBatch(ctx, tx, idsOf(requests), models.RequestRejected); err != nil {
				return err
			}
			markStatus(requests, models.RequestRejected)
			result = &RequestStatusResult{Confirmed: []models.Request{}, Rejected: requests}
			return nil
		}

		reserve := int64(event.ParticipantLimit) - confirmed
		toConfirm, toReject := splitByReserve(requests, reserve)

		if err := s.requestRepo.UpdateStatusBatch(ctx, tx, idsOf(toConfirm), models.RequestConfirmed); err != nil {
			return err
		}
		if err := s.requestRepo.UpdateStatusBatch(ctx, tx, idsOf(toReject), models.RequestRejected); err != nil {
			return err
		}
		markStatus(toConfirm, models.RequestConfirmed)
		markStatus(toReject, models.RequestRejected)

		result = &RequestStatusResult{Confirmed: toConfirm, Rejected: toReject}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// initialRequestStatus decides the status of a freshly admitted request:
// auto-confirmed unless the event both moderates requests and has a limit.
func initialRequestStatus(event *models.Event) models.RequestStatus {
	if !event.RequestModeration || event.ParticipantLimit == 0 {
		return models.RequestConfirmed
	}
	return models.RequestPending
}

// orderByIDs reorders fetched requests into the caller-supplied id order.
// Ids that matched no request are dropped; a duplicated id counts once so
// it cannot consume two seats of the reserve.
func orderByIDs(requests []models.Request, ids []uint) []models.Request {
	byID := make(map[uint]models.Request, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	ordered := make([]models.Request, 0, len(requests))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
			delete(byID, id)
		}
	}
	return ordered
}

// splitByReserve confirms the first reserve requests and rejects the rest,
// preserving input order.
func splitByReserve(requests []models.Request, reserve int64) (toConfirm, toReject []models.Request) {
	if reserve >= int64(len(requests)) {
		return requests, nil
	}
	if reserve < 0 {
		reserve = 0
	}
	return requests[:reserve], requests[reserve:]
}

func idsOf(requests []models.Request) []uint {
	ids := make([]uint, len(requests))
	for i := range requests {
		ids[i] = requests[i].ID
	}
	return ids
}

func markStatus(requests []models.Request, status models.RequestStatus) {
	for i := range requests {
		requests[i].Status = status
	}
}
