package middleware

import (
	"log"
	"net/http"
	"time"

	"eventhub-backend/internal/dto"

	"github.com/labstack/echo/v4"
)

const timestampLayout = "2006-01-02 15:04:05"

// ErrorHandler renders every error as {status, reason, message, timestamp}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	status, reason := describe(code)
	if code >= http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}

	_ = c.JSON(code, dto.ErrorResponse{
		Status:    status,
		Reason:    reason,
		Message:   msg,
		Timestamp: time.Now().Format(timestampLayout),
	})
}

func describe(code int) (status, reason string) {
	switch code {
	case http.StatusNotFound:
		return "NOT_FOUND", "The required object was not found."
	case http.StatusConflict:
		return "CONFLICT", "Integrity constraint has been violated."
	case http.StatusBadRequest:
		return "BAD_REQUEST", "Incorrectly made request."
	default:
		return "INTERNAL_SERVER_ERROR", "Unexpected error."
	}
}
