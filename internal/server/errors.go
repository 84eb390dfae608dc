package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical/pdf-assistant/internal/domain"
)

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Session *SessionView `json:"session,omitempty"`
}

// statusFor maps an error onto the HTTP status reported to the client.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch domain.TypeOf(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeExtraction, domain.ErrorTypeEmptyDocument:
		return http.StatusUnprocessableEntity
	case domain.ErrorTypeInference:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable error field.
func errorCode(err error) string {
	if t := domain.TypeOf(err); t != "" {
		return string(t)
	}
	if statusFor(err) == http.StatusRequestEntityTooLarge {
		return "too_large"
	}
	return "internal"
}

// userMessage hides internal error details behind a generic message.
func userMessage(err error) string {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return "uploaded file is too large"
	case domain.TypeOf(err) == "" || domain.IsType(err, domain.ErrorTypeIO):
		return "internal error"
	default:
		return domain.UserMessage(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, s *SessionView) {
	writeJSON(w, statusFor(err), ErrorResponse{
		Error:   errorCode(err),
		Message: userMessage(err),
		Session: s,
	})
}
