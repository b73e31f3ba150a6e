package api

import (
	"log/slog"
	"net/http"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/service"
)

// AcknowledgeRequest is the body of POST /achievements/acknowledge.
type AcknowledgeRequest struct {
	BadgeIDs []string `json:"badge_ids" validate:"required,min=1,max=100,dive,required"`
}

// AcknowledgeResponse reports how many badges stopped being new.
type AcknowledgeResponse struct {
	Acknowledged int `json:"acknowledged"`
}

// AchievementHandler serves badges.
type AchievementHandler struct {
	achievements service.AchievementEvaluator
	logger       *slog.Logger
}

// NewAchievementHandler creates an AchievementHandler.
func NewAchievementHandler(achievements service.AchievementEvaluator, logger *slog.Logger) *AchievementHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AchievementHandler")
	}
	return &AchievementHandler{
		achievements: achievements,
		logger:       logger.With(slog.String("component", "achievement_handler")),
	}
}

// List handles GET /achievements.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	badges, err := h.achievements.List(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list achievements")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, badges)
}

// Pending handles GET /achievements/pending.
func (h *AchievementHandler) Pending(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	badges, err := h.achievements.Pending(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list pending achievements")
		return
	}
	if badges == nil {
		badges = []service.BadgeView{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, badges)
}

// Acknowledge handles POST /achievements/acknowledge.
func (h *AchievementHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	var req AcknowledgeRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	n, err := h.achievements.Acknowledge(r.Context(), learnerID, req.BadgeIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to acknowledge achievements")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AcknowledgeResponse{Acknowledged: n})
}
