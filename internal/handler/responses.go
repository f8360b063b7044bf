package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode into a pooled buffer so a marshal failure never corrupts the body.
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to an HTTP response and logs it.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, message := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err)
	} else {
		log.Warn(opName+" rejected", "error", err)
	}
	respondError(w, status, message)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgValidationError    = "Invalid request. Please check your inputs."
	ErrMsgNotFoundError      = "Resource not found."
	ErrMsgQueueFullError     = "Event queue is full. Please retry later."
	ErrMsgUnavailableError   = "Server is temporarily unavailable. Please try again later."
	ErrMsgInsufficientError  = "Insufficient balance"
	ErrMsgTransferStateError = "Transfer is not in a state that allows this operation"
	ErrMsgInvalidQueryError  = "Invalid leaderboard query"
	ErrMsgInvalidRuleError   = "Rule configuration is invalid"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses following the service error taxonomy.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrQueueFull):
		return http.StatusServiceUnavailable, ErrMsgQueueFullError
	case errors.Is(err, domain.ErrQueueClosed):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrMsgNotFoundError
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest, ErrMsgInvalidQueryError
	case errors.Is(err, domain.ErrInvalidRuleConfig):
		return http.StatusBadRequest, ErrMsgInvalidRuleError
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, ErrMsgInsufficientError
	case errors.Is(err, domain.ErrTransferState):
		return http.StatusConflict, ErrMsgTransferStateError
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrMsgValidationError
	case errors.Is(err, domain.ErrRepository):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
