package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Question creation counter
	QuestionCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "squeak_questions_created_total",
			Help: "Total number of questions created",
		},
	)

	// Reply creation counter
	ReplyCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "squeak_replies_created_total",
			Help: "Total number of replies created",
		},
	)

	// Registration counter
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "squeak_registrations_total",
			Help: "Total number of end-user profile registrations",
		},
	)

	// Pipeline error counter
	QuestionErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squeak_question_errors_total",
			Help: "Total number of question pipeline errors",
		},
		[]string{"type"}, // "invalid_request", "not_authenticated", "profile_missing", "config_missing", "db_error"
	)

	// Notification dispatch counter
	NotificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squeak_notifications_total",
			Help: "Total number of question alert dispatches",
		},
		[]string{"outcome"}, // "ok", "skipped", "error"
	)

	// Image upload counter
	ImageUploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squeak_image_uploads_total",
			Help: "Total number of image uploads to the CDN",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	// Slack import counter
	ImportedQuestionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "squeak_imported_questions_total",
			Help: "Total number of questions imported from Slack",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "squeak_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "squeak_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "squeak_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

func init() {
	prometheus.MustRegister(QuestionCreatedCounter)
	prometheus.MustRegister(ReplyCreatedCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(QuestionErrorCounter)
	prometheus.MustRegister(NotificationCounter)
	prometheus.MustRegister(ImageUploadCounter)
	prometheus.MustRegister(ImportedQuestionCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordQuestionError records a question pipeline error by type
func RecordQuestionError(errorType string) {
	QuestionErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordNotification records a question alert dispatch outcome
func RecordNotification(outcome string) {
	NotificationCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordImageUpload records an image upload outcome
func RecordImageUpload(outcome string) {
	ImageUploadCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
