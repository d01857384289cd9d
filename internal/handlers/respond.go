package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}

// writeError maps store errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, store.ErrConflict):
		writeMessage(w, http.StatusConflict, store.ErrConflict.Error())
	case errors.Is(err, store.ErrInvalid):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func studentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
