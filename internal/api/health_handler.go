package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/redact"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports service liveness and dependency reachability.
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler running checks on every request.
func NewHealthHandler(checks map[string]HealthCheck, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health. It answers 503 when any check fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Error("health check failed", slog.String("check", name), slog.String("error", redact.Error(err)))
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	shared.RespondWithJSON(w, r, status, resp)
}
