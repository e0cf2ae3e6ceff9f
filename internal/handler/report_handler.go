package handler

import (
	"errors"
	"net/http"
	"time"

	"catalog-service/internal/service"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportHandler exposes the read-only reporting endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler returns a ReportHandler backed by the given service.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ProductStats returns product counters, optionally date-filtered
func (h *ReportHandler) ProductStats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("product_stats").Inc()

	dateRange, err := optionalDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	report, err := h.reports.ProductStats(dateRange)
	if err != nil {
		log.Error("Failed to build product stats report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// CategoryStats returns per-category inventory aggregates
func (h *ReportHandler) CategoryStats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("category_stats").Inc()

	rows, err := h.reports.CategoryStats()
	if err != nil {
		log.Error("Failed to build category stats report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// TopProducts returns the most-viewed products
func (h *ReportHandler) TopProducts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("top_products").Inc()

	dateRange, err := optionalDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rows, err := h.reports.TopProducts(queryInt(c, "limit", 10), dateRange)
	if err != nil {
		log.Error("Failed to build top products report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// LowStock returns the low-stock listing with category names
func (h *ReportHandler) LowStock(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("low_stock").Inc()

	rows, err := h.reports.LowStockReport(queryInt(c, "limit", 20))
	if err != nil {
		log.Error("Failed to build low-stock report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// OutOfStock returns the out-of-stock listing with category names
func (h *ReportHandler) OutOfStock(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("out_of_stock").Inc()

	rows, err := h.reports.OutOfStockReport(queryInt(c, "limit", 20))
	if err != nil {
		log.Error("Failed to build out-of-stock report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Growth returns per-day creation counts for a mandatory date range
func (h *ReportHandler) Growth(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("growth").Inc()

	dateRange, err := optionalDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if dateRange == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startDate and endDate are required"})
	}

	rows, err := h.reports.Growth(*dateRange)
	if err != nil {
		log.Error("Failed to build growth report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// InventoryValue returns per-category inventory value
func (h *ReportHandler) InventoryValue(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("inventory_value").Inc()

	rows, err := h.reports.InventoryValue()
	if err != nil {
		log.Error("Failed to build inventory value report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// UserActivity returns per-user login recency and authoring counts
func (h *ReportHandler) UserActivity(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("user_activity").Inc()

	dateRange, err := optionalDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rows, err := h.reports.UserActivity(dateRange)
	if err != nil {
		log.Error("Failed to build user activity report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// SystemHealth returns entity counts and process state
func (h *ReportHandler) SystemHealth(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ReportRequests.WithLabelValues("system_health").Inc()

	report, err := h.reports.SystemHealth()
	if err != nil {
		log.Error("Failed to build system health report", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// optionalDateRange parses startDate/endDate query parameters. Both must be
// present to form a range; each accepts RFC 3339 or a plain date. The end of
// a plain-date range is pushed to the end of that day so the bound stays
// inclusive.
func optionalDateRange(c echo.Context) (*service.DateRange, error) {
	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, errors.New("startDate and endDate must be provided together")
	}

	start, err := parseDate(startStr, false)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(endStr, true)
	if err != nil {
		return nil, err
	}
	return &service.DateRange{Start: start, End: end}, nil
}

func parseDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
