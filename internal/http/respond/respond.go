package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mateusbrg/user-registry/internal/validate"
)

// StatusInvalidToken is the non-standard status the API answers with when the
// bearer token is missing, expired, or invalid.
const StatusInvalidToken = 498

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// violationEnvelope carries a batched validation failure.
type violationEnvelope struct {
	Code   int                 `json:"code"`
	Errors validate.Violations `json:"errors"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// Violations writes the whole validation batch in one bad-request response.
func Violations(w http.ResponseWriter, violations validate.Violations) {
	write(w, http.StatusBadRequest, violationEnvelope{Code: http.StatusBadRequest, Errors: violations})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}
