package helpers

import (
	"encoding/json"
	"net/http"
	"time"

	"eventsapi/internal/domain"
)

// Messages used in error bodies.
const (
	MsgValidationFailed = "validation failed"
	MsgEventNotFound    = "event not found"
	MsgInvalidEventID   = "invalid event id"
	MsgUnauthorized     = "unauthorized"
	MsgInternalError    = "internal server error"
	MsgRouteNotFound    = "resource not found"
	MsgMethodNotAllowed = "method not allowed"
)

// now is replaced in tests.
var now = time.Now

// ErrorResponse is the body of every error response.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message   string             `json:"message"`
	Status    int                `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Errors    domain.FieldErrors `json:"errors,omitempty"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and encodes v.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes an ErrorResponse with the given status and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSONFieldErrors(w, statusCode, message, nil)
}

// WriteJSONFieldErrors writes an ErrorResponse carrying per-field messages.
func WriteJSONFieldErrors(w http.ResponseWriter, statusCode int, message string, fields domain.FieldErrors) {
	WriteJSON(w, statusCode, ErrorResponse{
		Message:   message,
		Status:    statusCode,
		Timestamp: now().UTC(),
		Errors:    fields,
	})
}
