package handler

import (
	"encoding/json"
	"net/http"

	"coffee-orders/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing left to do for the client.
		return
	}
}

// writeError writes a standardised error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto the HTTP surface. Unknown errors
// are surfaced as an opaque internal failure.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	code := model.ErrorCode(err)

	status := http.StatusInternalServerError
	message := "Internal server error"
	switch code {
	case model.ErrCodeInvalidInput:
		status = http.StatusBadRequest
		message = err.Error()
	case model.ErrCodeConflict:
		status = http.StatusConflict
		message = err.Error()
	case model.ErrCodeNotFound:
		status = http.StatusNotFound
		message = err.Error()
	}

	writeError(w, status, code, message, logger)
}
