package handlers

import (
	"net/http"
	"time"

	"github.com/mateusbrg/user-registry/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Handle answers GET /health.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", map[string]string{
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
