// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tea_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tea_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	FeedbackSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tea_feedback_submissions_total",
			Help: "Like/dislike submissions by outcome (applied or dedup)",
		},
		[]string{"action", "outcome"},
	)

	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tea_events_recorded_total",
			Help: "Visitor events appended, by type",
		},
		[]string{"type"},
	)

	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tea_import_rows_total",
			Help: "Spreadsheet rows seen during import preview, by validity",
		},
		[]string{"result"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tea_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordFeedback(action string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "dedup"
	}
	FeedbackSubmissions.WithLabelValues(action, outcome).Inc()
}

func RecordEvent(eventType string) {
	EventsRecorded.WithLabelValues(eventType).Inc()
}

func RecordImportRow(ok bool) {
	result := "ok"
	if !ok {
		result = "invalid"
	}
	ImportRows.WithLabelValues(result).Inc()
}

func RecordRateLimit(scope string) {
	RateLimitRejections.WithLabelValues(scope).Inc()
}
