package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler returns a HealthHandler bound to the given database
// handle.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports service and database status
func (h *HealthHandler) Check(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"database": "ok",
	})
}
