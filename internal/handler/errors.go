package handler

import (
	"errors"
	"net/http"

	"eventhub-backend/internal/apperr"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// httpError maps service errors onto transport status codes. Unique-index
// violations count as conflicts, same as state-machine violations.
func httpError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperr.Conflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case apperr.BadRequest:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return echo.NewHTTPError(http.StatusConflict, "integrity constraint has been violated")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
