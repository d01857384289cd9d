package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/klassbok/internal/app"
	"github.com/shrimpsizemoose/klassbok/internal/metrics"
	"github.com/shrimpsizemoose/klassbok/internal/models"
)

type MessageHandler struct {
	service *app.Service
}

func NewMessageHandler(service *app.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.service.Store.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student":  student,
		"messages": messages,
	})
}

func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	var in models.MessageInput
	if err := decodeBody(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.service.Store.AppendMessage(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.MessagesTotal.Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": msg,
		"notice":  "Message sent!",
	})
}
