package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/mag7-collector/pkg/database"
)

// DBChecker reports database health; *database.DB satisfies it
type DBChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler reports service liveness and optional dependencies
type HealthHandler struct {
	service string
	db      DBChecker
}

// NewHealthHandler creates a health handler; db may be nil
func NewHealthHandler(service string, db DBChecker) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// Health returns ok, or 503 when a configured dependency is down
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
	}

	if h.db == nil {
		respondJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	body["database"] = status
	if err != nil {
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
