package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/service"
)

// ChatLimitResponse is the 429 body of POST /plan/chat-messages. It carries
// the usage that caused the rejection.
type ChatLimitResponse struct {
	shared.ErrorResponse
	Usage *plan.FeatureStatus `json:"usage,omitempty"`
}

// PlanHandler serves plan usage and meters chat messages.
type PlanHandler struct {
	plans  service.PlanGate
	logger *slog.Logger
}

// NewPlanHandler creates a PlanHandler.
func NewPlanHandler(plans service.PlanGate, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PlanHandler")
	}
	return &PlanHandler{
		plans:  plans,
		logger: logger.With(slog.String("component", "plan_handler")),
	}
}

// Usage handles GET /plan/usage.
func (h *PlanHandler) Usage(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.plans.Status(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get plan usage")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// RecordChatMessage handles POST /plan/chat-messages. It counts one chat
// message against today's allowance.
func (h *PlanHandler) RecordChatMessage(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.plans.RecordChatMessage(r.Context(), learnerID)
	if err != nil {
		if errors.Is(err, service.ErrPlanLimitReached) {
			logger.FromContextOrDefault(r.Context(), h.logger).Warn("chat message limit reached",
				slog.String("learner_id", learnerID.String()))
			shared.RespondWithJSON(w, r, http.StatusTooManyRequests, ChatLimitResponse{
				ErrorResponse: shared.ErrorResponse{
					Error:   "Plan limit reached",
					TraceID: shared.GetTraceID(r.Context()),
				},
				Usage: status,
			})
			return
		}
		HandleAPIError(w, r, err, "Failed to record chat message")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
