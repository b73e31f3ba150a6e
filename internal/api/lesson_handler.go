package api

import (
	"log/slog"
	"net/http"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/service"
)

// LessonHandler serves lesson and level unlock state.
type LessonHandler struct {
	lessons service.LessonGate
	logger  *slog.Logger
}

// NewLessonHandler creates a LessonHandler.
func NewLessonHandler(lessons service.LessonGate, logger *slog.Logger) *LessonHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LessonHandler")
	}
	return &LessonHandler{
		lessons: lessons,
		logger:  logger.With(slog.String("component", "lesson_handler")),
	}
}

// ListLessons handles GET /lessons.
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	lessons, err := h.lessons.ListLessons(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list lessons")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, lessons)
}

// ListLevels handles GET /levels.
func (h *LessonHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := requireLearner(w, r, h.logger)
	if !ok {
		return
	}

	levels, err := h.lessons.Levels(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list levels")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, levels)
}

// CompleteLesson handles POST /lessons/{id}/complete.
func (h *LessonHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	learnerID, lessonID, ok := learnerAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	completion, err := h.lessons.CompleteLesson(r.Context(), learnerID, lessonID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete lesson")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("lesson completed",
		slog.String("lesson_id", lessonID),
		slog.String("next_lesson_id", completion.NextLessonID))
	shared.RespondWithJSON(w, r, http.StatusOK, completion)
}
