package handlers

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/app"
	"github.com/shrimpsizemoose/klassbok/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// WithRequestID tags every request and response with an id.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		logger.Debug.Printf("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// WithMetrics observes request durations labelled by route pattern.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}

// WithRateLimit rejects clients over their per-minute budget.
func WithRateLimit(limiter *app.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(r.Context(), clientIP(r)) {
			metrics.RateLimitedTotal.Inc()
			writeMessage(w, http.StatusTooManyRequests, "rate limit")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}
