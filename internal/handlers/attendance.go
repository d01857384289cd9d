package handlers

import (
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/klassbok/internal/app"
	"github.com/shrimpsizemoose/klassbok/internal/metrics"
	"github.com/shrimpsizemoose/klassbok/internal/models"
)

type AttendanceHandler struct {
	service *app.Service
}

func NewAttendanceHandler(service *app.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	student, err := h.service.Store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.service.Store.ListAttendance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student":    student,
		"attendance": records,
	})
}

func (h *AttendanceHandler) HandleMark(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	var in models.AttendanceInput
	if err := decodeBody(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, created, err := h.service.Store.UpsertAttendance(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	action := "updated"
	if created {
		action = "created"
	}
	metrics.AttendanceMarksTotal.WithLabelValues(statusLabel(record.Status), action).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": record,
		"notice": "Attendance updated!",
	})
}

// statusLabel folds free-text statuses into a fixed label set.
func statusLabel(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "present", "absent", "late", "excused":
		return s
	default:
		return "other"
	}
}
