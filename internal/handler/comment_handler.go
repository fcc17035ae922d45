package handler

import (
	"net/http"

	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/repository"
	"eventhub-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) RegisterRoutes(e *echo.Echo) {
	users := e.Group("/users/:userId/comments")
	users.GET("", h.GetUserComments)
	users.POST("/:eventId", h.AddComment)
	users.GET("/:eventId", h.GetUserEventComments)
	users.GET("/:eventId/:commentId", h.GetComment)
	users.PATCH("/:eventId/:commentId", h.UpdateComment)
	users.DELETE("/:eventId/:commentId", h.DeleteComment)

	admin := e.Group("/admin/comments")
	admin.GET("", h.GetCommentsAdmin)
	admin.PATCH("", h.ModerateComments)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	var req dto.NewCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.svc.AddComment(c.Request().Context(), userID, eventID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToCommentResponse(comment))
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	var req dto.NewCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.svc.UpdateComment(c.Request().Context(), userID, eventID, commentID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCommentResponse(comment))
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	comment, err := h.svc.GetComment(c.Request().Context(), userID, eventID, commentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCommentResponse(comment))
}

func (h *CommentHandler) GetUserComments(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	comments, err := h.svc.GetUserComments(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfCommentResponse(comments))
}

func (h *CommentHandler) GetUserEventComments(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	comments, err := h.svc.GetUserEventComments(c.Request().Context(), userID, eventID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfCommentResponse(comments))
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteComment(c.Request().Context(), userID, eventID, commentID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) ModerateComments(c echo.Context) error {
	var req dto.CommentStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comments, err := h.svc.ModerateComments(c.Request().Context(), req.CommentIDs, models.CommentStatus(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfCommentResponse(comments))
}

func (h *CommentHandler) GetCommentsAdmin(c echo.Context) error {
	users, err := queryUintList(c, "users")
	if err != nil {
		return err
	}
	events, err := queryUintList(c, "events")
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

	var statuses []models.CommentStatus
	for _, s := range queryStringList(c, "statuses") {
		statuses = append(statuses, models.CommentStatus(s))
	}

	comments, err := h.svc.GetCommentsAdmin(c.Request().Context(), repository.CommentFilter{
		Text:       c.QueryParam("text"),
		Users:      users,
		Statuses:   statuses,
		Events:     events,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		From:       from,
		Size:       size,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToListOfCommentResponse(comments))
}
