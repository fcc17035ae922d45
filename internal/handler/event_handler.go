package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/service"

	"github.com/labstack/echo/v4"
)

// HitSender records endpoint hits with the external stats collector.
// A nil sender disables hit recording.
type HitSender interface {
	SendHit(ctx context.Context, uri, ip string) error
}

type EventHandler struct {
	svc  service.EventService
	hits HitSender
}

func NewEventHandler(svc service.EventService, hits HitSender) *EventHandler {
	return &EventHandler{svc: svc, hits: hits}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	users := e.Group("/users/:userId/events")
	users.POST("", h.AddEvent)
	users.GET("", h.GetUserEvents)
	users.GET("/:eventId", h.GetUserEvent)
	users.PATCH("/:eventId", h.UpdateEventByInitiator)

	admin := e.Group("/admin/events")
	admin.GET("", h.GetEventsAdmin)
	admin.PATCH("/:eventId", h.UpdateEventByAdmin)

	e.GET("/events", h.GetEventsPublic)
	e.GET("/events/:eventId", h.GetPublicEvent)
}

func (h *EventHandler) AddEvent(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	var req dto.NewEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := h.svc.AddEvent(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(snapshot))
}

func (h *EventHandler) GetUserEvents(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 10)
	if err != nil {
		return err
	}

	snapshots, err := h.svc.GetUserEvents(c.Request().Context(), userID, from, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(snapshots))
}

func (h *EventHandler) GetUserEvent(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	snapshot, err := h.svc.GetUserEvent(c.Request().Context(), userID, eventID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(snapshot))
}

func (h *EventHandler) UpdateEventByInitiator(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := h.svc.UpdateEventByInitiator(c.Request().Context(), userID, eventID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(snapshot))
}

func (h *EventHandler) UpdateEventByAdmin(c echo.Context) error {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := h.svc.UpdateEventByAdmin(c.Request().Context(), eventID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(snapshot))
}

func (h *EventHandler) GetEventsAdmin(c echo.Context) error {
	users, err := queryUintList(c, "users")
	if err != nil {
		return err
	}
	categories, err := queryUintList(c, "categories")
	if err != nil {
		return err
	}
	rangeStart, err := queryTime(c, "rangeStart")
	if err != nil {
		return err
	}
	rangeEnd, err := queryTime(c, "rangeEnd")
	if err != nil {
		return err
	}
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 10)
	if err != nil {
		return err
	}

	var states []models.EventState
	for _, s := range queryStringList(c, "states") {
		states = append(states, models.EventState(s))
	}

	snapshots, err := h.svc.GetEventsAdmin(c.Request().Context(), service.AdminSearch{
		Users:      users,
		States:     states,
		Categories: categories,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		From:       from,
		Size:       size,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(snapshots))
}

func (h *EventHandler) GetEventsPublic(c echo.Context) error {
	categories, err := queryUintList(c, "categories")
	if err != nil {
		return err
	}
	paid, err := queryBoolPtr(c, "paid")
	if err != nil {
		return err
	}
	rangeStart, err := queryTime(c, "rangeStart")
	if err != nil {
		return err
	}
	rangeEnd, err := queryTime(c, "rangeEnd")
	if err != nil {
		return err
	}
	onlyAvailable, err := queryBool(c, "onlyAvailable")
	if err != nil {
		return err
	}
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 10)
	if err != nil {
		return err
	}

	snapshots, err := h.svc.GetEventsPublic(c.Request().Context(), service.PublicSearch{
		Text:          c.QueryParam("text"),
		Categories:    categories,
		Paid:          paid,
		RangeStart:    rangeStart,
		RangeEnd:      rangeEnd,
		OnlyAvailable: onlyAvailable,
		Sort:          c.QueryParam("sort"),
		From:          from,
		Size:          size,
	})
	if err != nil {
		return httpError(err)
	}

	h.recordHit(c, "/events")

	return c.JSON(http.StatusOK, toEventResponses(snapshots))
}

func (h *EventHandler) GetPublicEvent(c echo.Context) error {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	snapshot, err := h.svc.GetPublicEvent(c.Request().Context(), eventID)
	if err != nil {
		return httpError(err)
	}

	h.recordHit(c, fmt.Sprintf("/events/%d", eventID))

	return c.JSON(http.StatusOK, toEventResponse(snapshot))
}

func (h *EventHandler) recordHit(c echo.Context, uri string) {
	if h.hits == nil {
		return
	}
	if err := h.hits.SendHit(c.Request().Context(), uri, c.RealIP()); err != nil {
		log.Printf("record hit for %s: %v", uri, err)
	}
}

func toEventResponse(snapshot *service.EventSnapshot) dto.EventResponse {
	return dto.ToEventResponse(&snapshot.Event, snapshot.ConfirmedRequests, snapshot.Views)
}

func toEventResponses(snapshots []service.EventSnapshot) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(snapshots))
	for i := range snapshots {
		resp[i] = toEventResponse(&snapshots[i])
	}
	return resp
}
