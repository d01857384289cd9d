package handlers

import (
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/app"
	"github.com/shrimpsizemoose/klassbok/internal/metrics"
	"github.com/shrimpsizemoose/klassbok/internal/models"
	"github.com/shrimpsizemoose/klassbok/internal/store"
)

type StudentHandler struct {
	service *app.Service
}

func NewStudentHandler(service *app.Service) *StudentHandler {
	return &StudentHandler{
		service: service,
	}
}

func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.Store.ListActiveStudents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *StudentHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	students, err := h.service.Store.SearchStudents(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"query":    query,
	})
}

func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student": student,
	})
}

func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.StudentInput
	if err := decodeBody(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	logger.Debug.Printf("Add student request for roll no %s", in.RollNo)

	student, restored, err := h.service.Store.AddOrRestoreStudent(r.Context(), in)
	if err != nil {
		metrics.StudentOpsTotal.WithLabelValues("add", outcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	if restored {
		metrics.StudentOpsTotal.WithLabelValues("add", "restored").Inc()
		logger.Info.Printf("Restored student %d (roll no %s)", student.ID, student.RollNo)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"student": student,
			"notice":  "Previously deleted student restored and updated!",
		})
		return
	}

	metrics.StudentOpsTotal.WithLabelValues("add", "created").Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"student": student,
		"notice":  "Student added successfully!",
	})
}

func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	var in models.StudentInput
	if err := decodeBody(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	student, err := h.service.Store.UpdateStudent(r.Context(), id, in)
	if err != nil {
		metrics.StudentOpsTotal.WithLabelValues("update", outcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	metrics.StudentOpsTotal.WithLabelValues("update", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student": student,
		"notice":  "Student updated successfully!",
	})
}

func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	if err := h.service.Store.SoftDeleteStudent(r.Context(), id); err != nil {
		metrics.StudentOpsTotal.WithLabelValues("delete", outcome(err)).Inc()
		writeError(w, r, err)
		return
	}

	metrics.StudentOpsTotal.WithLabelValues("delete", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notice": "Student marked as deleted.",
	})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}
