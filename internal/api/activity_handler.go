package api

import (
	"log/slog"
	"net/http"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/service"
)

// StreakResponse is the body of GET /activity/streak.
type StreakResponse struct {
	GoalStreak int `json:"goal_streak"`
}

// ActivityHandler serves daily activity views.
type ActivityHandler struct {
	activity service.ActivityAggregator
	logger   *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activity service.ActivityAggregator, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ActivityHandler")
	}
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With(slog.String("component", "activity_handler")),
	}
}

// Today handles GET /activity/today.
func (h *ActivityHandler) Today(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	day, err := h.activity.Today(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get today's activity")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, day)
}

// History handles GET /activity/history?days=. An absent days parameter
// selects the default window.
func (h *ActivityHandler) History(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	days, err := getQueryInt(r, "days", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	history, err := h.activity.History(r.Context(), learnerID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get activity history")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, history)
}

// Streak handles GET /activity/streak.
func (h *ActivityHandler) Streak(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	streak, err := h.activity.GoalStreak(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get streak")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StreakResponse{GoalStreak: streak})
}
