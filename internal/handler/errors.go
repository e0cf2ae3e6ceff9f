package handler

import (
	"errors"
	"net/http"

	"catalog-service/internal/service"

	"github.com/labstack/echo/v4"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// NotFound 404, Conflict 409, credential failures 401, everything else 500.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInactiveUser):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
