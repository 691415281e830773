package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// readyTimeout bounds the dependency checks of a readiness probe.
const readyTimeout = 3 * time.Second

// HealthChecker is a dependency that can be pinged.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	logger *slog.Logger
	checks map[string]HealthChecker
}

// NewHealthHandler creates a new HealthHandler. A nil checker is reported
// as "not configured" and does not fail readiness.
func NewHealthHandler(logger *slog.Logger, db, cache HealthChecker) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		logger: logger,
		checks: map[string]HealthChecker{"postgres": db, "redis": cache},
	}
}

// HealthResponse represents a probe response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe. It never touches dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz reports 200 only when every configured dependency answers.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true

	for name, checker := range h.checks {
		if checker == nil {
			results[name] = "not configured"
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "dependency", name, "error", err)
			results[name] = "unavailable"
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: results})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: results})
}
