package handler

import (
	"net/http"
	"strconv"

	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type RequestHandler struct {
	svc service.RequestService
}

func NewRequestHandler(svc service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) RegisterRoutes(e *echo.Echo) {
	users := e.Group("/users/:userId")
	users.POST("/requests", h.CreateRequest)
	users.GET("/requests", h.GetUserRequests)
	users.PATCH("/requests/:requestId/cancel", h.CancelRequest)
	users.GET("/events/:eventId/requests", h.GetEventRequests)
	users.PATCH("/events/:eventId/requests", h.UpdateRequestsStatus)
}

func (h *RequestHandler) CreateRequest(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := strconv.ParseUint(c.QueryParam("eventId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "eventId query parameter is required")
	}

	request, err := h.svc.CreateRequest(c.Request().Context(), userID, uint(eventID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToRequestResponse(request))
}

func (h *RequestHandler) CancelRequest(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	requestID, err := pathID(c, "requestId")
	if err != nil {
		return err
	}

	request, err := h.svc.CancelRequest(c.Request().Context(), userID, requestID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

func (h *RequestHandler) GetUserRequests(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	requests, err := h.svc.GetUserRequests(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfRequestResponse(requests))
}

func (h *RequestHandler) GetEventRequests(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	requests, err := h.svc.GetEventRequests(c.Request().Context(), userID, eventID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfRequestResponse(requests))
}

func (h *RequestHandler) UpdateRequestsStatus(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	var req dto.RequestStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.UpdateRequestsStatus(c.Request().Context(), userID, eventID,
		req.RequestIDs, models.RequestStatus(req.Status))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.RequestStatusUpdateResult{
		ConfirmedRequests: dto.ToListOfRequestResponse(result.Confirmed),
		RejectedRequests:  dto.ToListOfRequestResponse(result.Rejected),
	})
}
