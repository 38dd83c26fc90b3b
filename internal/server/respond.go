package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
)

// maxBodyBytes bounds JSON request bodies. Saved profiles are two pages of ten items each.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes an already encoded JSON body unchanged.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeError maps err to a status and message, logs it, and writes the JSON error body.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status, message := statusFor(err)

	body := errorBody{Message: message}
	if ue, ok := services.AsUpstreamError(err); ok {
		body.Details = ue.Details()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	writeJSON(w, status, body)
}

// statusFor is the single mapping from domain errors to HTTP status codes and client messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrMissingCode):
		return http.StatusBadRequest, "Missing authorization code"
	case errors.Is(err, shared.ErrMissingToken):
		return http.StatusBadRequest, "Missing access token"
	case errors.Is(err, shared.ErrInvalidUser):
		return http.StatusBadRequest, "Invalid user"
	case errors.Is(err, shared.ErrInvalidTimeRange):
		return http.StatusBadRequest, "Invalid time range"
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, shared.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, shared.ErrSessionIncomplete):
		return http.StatusConflict, "Session is not complete"
	case errors.Is(err, shared.ErrInvalidUpstreamJSON):
		return http.StatusInternalServerError, "Invalid JSON from Spotify"
	case errors.Is(err, shared.ErrUpstream):
		return http.StatusInternalServerError, "Spotify request failed"
	case errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusInternalServerError, "Spotify credentials are not configured"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decodeJSON reads a bounded JSON request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
}
