package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func success(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func failure(w http.ResponseWriter, status int, message string, detail any) {
	writeJSON(w, status, Response{Success: false, Message: message, Error: detail})
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		failure(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, service.ErrEmailRegistered):
		failure(w, http.StatusConflict, "Email already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		failure(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, service.ErrNotVerified):
		failure(w, http.StatusForbidden, "Account is not verified", nil)
	case errors.Is(err, service.ErrUserNotFound):
		failure(w, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrNoCollaborator):
		failure(w, http.StatusServiceUnavailable, "AI service is not configured", nil)
	case errors.Is(err, service.ErrCorruptStorage):
		s.log.WithField("path", r.URL.Path).Errorf("Stored data is unreadable: %+v", err)
		failure(w, http.StatusInternalServerError, "Stored data is unreadable; run doctor", err.Error())
	default:
		s.log.WithField("path", r.URL.Path).Errorf("Request failed: %+v", err)
		failure(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	failure(w, http.StatusBadRequest, message, nil)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
