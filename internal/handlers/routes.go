package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/klassbok/internal/app"
)

// NewRouter wires every endpoint of the service behind the common middleware.
func NewRouter(service *app.Service) http.Handler {
	students := NewStudentHandler(service)
	attendance := NewAttendanceHandler(service)
	messages := NewMessageHandler(service)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/students", students.HandleList)
	mux.HandleFunc("POST /api/v1/students", students.HandleCreate)
	mux.HandleFunc("GET /api/v1/students/{id}", students.HandleGet)
	mux.HandleFunc("PUT /api/v1/students/{id}", students.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/students/{id}", students.HandleDelete)
	mux.HandleFunc("GET /api/v1/search", students.HandleSearch)

	mux.HandleFunc("GET /api/v1/students/{id}/attendance", attendance.HandleList)
	mux.HandleFunc("POST /api/v1/students/{id}/attendance", attendance.HandleMark)

	mux.HandleFunc("GET /api/v1/students/{id}/messages", messages.HandleList)
	mux.HandleFunc("POST /api/v1/students/{id}/messages", messages.HandleSend)

	mux.HandleFunc("GET /healthz", healthHandler(service))
	mux.Handle("GET /metrics", promhttp.Handler())

	return WithRequestID(WithMetrics(WithRateLimit(service.Limiter, mux)))
}

func healthHandler(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.Store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"db":     false,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"db":     true,
		})
	}
}
