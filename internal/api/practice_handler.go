package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/exercise"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/service"
	"github.com/fluentpath/fluent-api/internal/service/practice"
)

// PracticeHandler serves exercises and scores answers.
type PracticeHandler struct {
	practice practice.Service
	mastery  service.MasteryTracker
	logger   *slog.Logger
}

// NewPracticeHandler creates a PracticeHandler.
func NewPracticeHandler(practiceService practice.Service, mastery service.MasteryTracker, logger *slog.Logger) *PracticeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PracticeHandler")
	}
	return &PracticeHandler{
		practice: practiceService,
		mastery:  mastery,
		logger:   logger.With(slog.String("component", "practice_handler")),
	}
}

// SubmitAnswer handles POST /practice/answers.
//
// An answer that was scored but not fully saved is still a 200: the outcome
// carries saved=false and a warning so the client can show the verdict and
// offer a retry.
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	var req practice.SubmitRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	outcome, err := h.practice.SubmitAnswer(r.Context(), learnerID, req)
	if err != nil {
		var perr *domain.PersistenceError
		if outcome != nil && errors.As(err, &perr) {
			log.Warn("answer scored but not saved",
				slog.String("item_id", req.ItemID),
				slog.String("step", perr.Step))
			shared.RespondWithJSON(w, r, http.StatusOK, outcome)
			return
		}
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("answer submitted",
		slog.String("item_id", req.ItemID),
		slog.Bool("correct", outcome.Verdict.Correct),
		slog.Int("points", outcome.Points))
	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

// GetExercise handles GET /items/{id}/exercise?variant=.
func (h *PracticeHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	learnerID, itemID, ok := learnerAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	variant, err := exercise.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ex, err := h.practice.GetExercise(r.Context(), learnerID, itemID, variant)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build exercise")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ex)
}

// GetItemProgress handles GET /progress/items/{id}.
func (h *PracticeHandler) GetItemProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, itemID, ok := learnerAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	rec, err := h.mastery.Progress(r.Context(), learnerID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}
