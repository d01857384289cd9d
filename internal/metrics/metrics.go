// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StudentOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_operations_total",
			Help: "Total number of student record operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	AttendanceMarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Total number of attendance marks",
		},
		[]string{"status", "action"},
	)

	MessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "student_messages_total",
			Help: "Total number of messages sent",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
