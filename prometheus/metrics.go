package prometheus

import (
	"time"

	"catalog-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter    prometheus.Counter
	RegisterCounter prometheus.Counter
	AuthErrors      prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	ProductOperations  prometheus.CounterVec
	CategoryOperations prometheus.CounterVec
	ReportRequests     prometheus.CounterVec

	// Product popularity metrics
	ProductViews prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_register_attempts_total",
			Help: "Total number of registration attempts",
		},
	)

	AuthErrors = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors by reason",
		},
		[]string{"reason"},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProductOperations = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations by type",
		},
		[]string{"operation"},
	)

	CategoryOperations = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_category_operations_total",
			Help: "Total number of category operations by type",
		},
		[]string{"operation"},
	)

	ReportRequests = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_report_requests_total",
			Help: "Total number of report requests by report",
		},
		[]string{"report"},
	)

	ProductViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product detail views",
		},
	)
}

// RecordAuthError increments the auth error counter for a reason.
func RecordAuthError(reason string) {
	AuthErrors.WithLabelValues(reason).Inc()
}

// TrackDBOperation returns a function that records the elapsed time of a
// database operation. Use with defer: defer TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DbOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
