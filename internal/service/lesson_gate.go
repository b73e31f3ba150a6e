package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/unlock"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
)

// LessonView is a catalog lesson with the learner's status.
type LessonView struct {
	domain.Lesson
	Status      domain.LessonStatus `json:"status"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// LessonCompletion reports the effect of completing a lesson.
type LessonCompletion struct {
	Lesson LessonView `json:"lesson"`
	// Completed is true only for the call that performed the completion.
	Completed bool `json:"completed"`
	// NextLessonID is the lesson unlocked as a result, if any.
	NextLessonID string `json:"next_lesson_id,omitempty"`
}

// LessonGate decides which lessons and levels a learner may open.
// Missing data always resolves to locked.
type LessonGate interface {
	// InitializeLearner writes the initial lesson records for a learner seen
	// for the first time. Existing records are left untouched.
	InitializeLearner(ctx context.Context, learnerID uuid.UUID) (int, error)

	// LessonStatus returns one lesson with the learner's status.
	LessonStatus(ctx context.Context, learnerID uuid.UUID, lessonID string) (*LessonView, error)

	// ListLessons returns every catalog lesson with the learner's status.
	ListLessons(ctx context.Context, learnerID uuid.UUID) ([]LessonView, error)

	// LevelStatus returns completion and accessibility of one level.
	LevelStatus(ctx context.Context, learnerID uuid.UUID, level domain.Level) (*unlock.LevelState, error)

	// Levels returns LevelStatus for every level, lowest first.
	Levels(ctx context.Context, learnerID uuid.UUID) ([]unlock.LevelState, error)

	// CompleteLesson marks an accessible lesson completed and unlocks the
	// following lesson of the same level. Completing twice is a no-op.
	// Returns ErrLessonLocked when the learner cannot access the lesson.
	CompleteLesson(ctx context.Context, learnerID uuid.UUID, lessonID string) (*LessonCompletion, error)

	// CompleteIfMastered completes the lesson containing itemID once every
	// item of that lesson is mastered. It returns nil when the lesson is not
	// finished yet.
	CompleteIfMastered(ctx context.Context, learnerID uuid.UUID, itemID string, now time.Time) (*LessonCompletion, error)
}

type lessonGate struct {
	lessons  store.LessonStore
	progress store.ProgressStore
	profiles store.ProfileStore
	catalog  catalog.Catalog
	rules    *unlock.Rules
	logger   *slog.Logger
	now      func() time.Time
}

// NewLessonGate creates a LessonGate over the catalog's lessons and levels.
// It returns an error if any dependency is nil.
func NewLessonGate(
	lessons store.LessonStore,
	progress store.ProgressStore,
	profiles store.ProfileStore,
	content catalog.Catalog,
	logger *slog.Logger,
) (LessonGate, error) {
	if lessons == nil {
		return nil, domain.NewValidationError("lessonStore", "cannot be nil", domain.ErrValidation)
	}
	if progress == nil {
		return nil, domain.NewValidationError("progressStore", "cannot be nil", domain.ErrValidation)
	}
	if profiles == nil {
		return nil, domain.NewValidationError("profileStore", "cannot be nil", domain.ErrValidation)
	}
	if content == nil {
		return nil, domain.NewValidationError("catalog", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &lessonGate{
		lessons:  lessons,
		progress: progress,
		profiles: profiles,
		catalog:  content,
		rules:    unlock.NewRules(content.Levels()),
		logger:   logger.With(slog.String("component", "lesson_gate")),
		now:      time.Now,
	}, nil
}

var _ LessonGate = (*lessonGate)(nil)

// InitializeLearner implements LessonGate.InitializeLearner.
func (s *lessonGate) InitializeLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	now := s.now().UTC()
	lessons := s.catalog.Lessons()

	records := make([]domain.LessonProgressRecord, 0, len(lessons))
	for _, l := range lessons {
		records = append(records, domain.LessonProgressRecord{
			LearnerID: learnerID,
			LessonID:  l.ID,
			Status:    unlock.InitialStatus(l),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	created, err := s.lessons.Initialize(ctx, records)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to initialize lessons",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return created, NewServiceError("initialize_learner", "failed to write lesson records", err)
	}
	return created, nil
}

// LessonStatus implements LessonGate.LessonStatus.
func (s *lessonGate) LessonStatus(ctx context.Context, learnerID uuid.UUID, lessonID string) (*LessonView, error) {
	lesson, err := s.catalog.Lesson(lessonID)
	if err != nil {
		return nil, err
	}

	st, records, err := s.learnerState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	view := s.view(lesson, st, records)
	return &view, nil
}

// ListLessons implements LessonGate.ListLessons.
func (s *lessonGate) ListLessons(ctx context.Context, learnerID uuid.UUID) ([]LessonView, error) {
	st, records, err := s.learnerState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	lessons := s.catalog.Lessons()
	views := make([]LessonView, 0, len(lessons))
	for _, l := range lessons {
		views = append(views, s.view(l, st, records))
	}
	return views, nil
}

// LevelStatus implements LessonGate.LevelStatus.
func (s *lessonGate) LevelStatus(ctx context.Context, learnerID uuid.UUID, level domain.Level) (*unlock.LevelState, error) {
	if !level.Valid() {
		return nil, domain.NewNotFoundError("level", string(level))
	}

	st, _, err := s.learnerState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	ls := s.rules.LevelState(level, st)
	return &ls, nil
}

// Levels implements LessonGate.Levels.
func (s *lessonGate) Levels(ctx context.Context, learnerID uuid.UUID) ([]unlock.LevelState, error) {
	st, _, err := s.learnerState(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	defs := s.catalog.Levels()
	out := make([]unlock.LevelState, 0, len(defs))
	for _, def := range defs {
		out = append(out, s.rules.LevelState(def.Level, st))
	}
	return out, nil
}

// CompleteLesson implements LessonGate.CompleteLesson.
func (s *lessonGate) CompleteLesson(ctx context.Context, learnerID uuid.UUID, lessonID string) (*LessonCompletion, error) {
	lesson, err := s.catalog.Lesson(lessonID)
	if err != nil {
		return nil, err
	}

	st, _, err := s.learnerState(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if s.rules.LessonStatus(lesson, st) == domain.LessonLocked {
		logger.FromContextOrDefault(ctx, s.logger).Debug("rejected completion of locked lesson",
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lessonID))
		return nil, NewServiceError("complete_lesson", fmt.Sprintf("lesson %q is locked", lessonID), ErrLessonLocked)
	}

	return s.complete(ctx, learnerID, lesson, s.now().UTC())
}

// CompleteIfMastered implements LessonGate.CompleteIfMastered.
func (s *lessonGate) CompleteIfMastered(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	now time.Time,
) (*LessonCompletion, error) {
	item, err := s.catalog.Item(itemID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.catalog.Lesson(item.LessonID)
	if err != nil {
		return nil, err
	}

	ids, err := s.progress.MasteredItemIDs(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("complete_if_mastered", "failed to read mastered items", err)
	}

	mastered := make(map[string]bool, len(ids))
	for _, id := range ids {
		mastered[id] = true
	}
	for _, id := range lesson.ItemIDs {
		if !mastered[id] {
			return nil, nil
		}
	}

	return s.complete(ctx, learnerID, lesson, now)
}

func (s *lessonGate) complete(ctx context.Context, learnerID uuid.UUID, lesson domain.Lesson, now time.Time) (*LessonCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rec, completed, err := s.lessons.Complete(ctx, learnerID, lesson.ID, now)
	if err != nil {
		log.Error("failed to complete lesson",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lesson.ID))
		return nil, NewServiceError("complete_lesson", "failed to write lesson record", err)
	}

	result := &LessonCompletion{
		Lesson:    LessonView{Lesson: lesson, Status: rec.Status, CompletedAt: rec.CompletedAt},
		Completed: completed,
	}

	next, ok := unlock.NextLesson(lesson, s.catalog.Lessons())
	if !ok {
		return result, nil
	}
	if err := s.lessons.Unlock(ctx, learnerID, next.ID, now); err != nil {
		log.Error("failed to unlock next lesson",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", next.ID))
		return result, NewServiceError("complete_lesson", "failed to unlock next lesson", err)
	}
	result.NextLessonID = next.ID

	if completed {
		log.Info("lesson completed",
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lesson.ID),
			slog.String("next_lesson_id", next.ID))
	}
	return result, nil
}

// learnerState gathers the snapshot the unlock rules read. Mastered items
// that are no longer in the catalog are ignored.
func (s *lessonGate) learnerState(
	ctx context.Context,
	learnerID uuid.UUID,
) (unlock.LearnerState, map[string]domain.LessonProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids, err := s.progress.MasteredItemIDs(ctx, learnerID)
	if err != nil {
		log.Error("failed to list mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return unlock.LearnerState{}, nil, NewServiceError("learner_state", "failed to read mastered items", err)
	}

	st := unlock.LearnerState{
		MasteredTotal:   len(ids),
		MasteredByLevel: make(map[domain.Level]int),
		Lessons:         make(map[string]domain.LessonStatus),
	}
	for _, id := range ids {
		if item, err := s.catalog.Item(id); err == nil {
			st.MasteredByLevel[item.Level]++
		}
	}

	profile, err := s.profiles.Get(ctx, learnerID)
	switch {
	case err == nil:
		st.ProfileLevel = profile.Level
	case !errors.Is(err, store.ErrProfileNotFound):
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return unlock.LearnerState{}, nil, NewServiceError("learner_state", "failed to read profile", err)
	}

	list, err := s.lessons.List(ctx, learnerID)
	if err != nil {
		log.Error("failed to list lesson records",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return unlock.LearnerState{}, nil, NewServiceError("learner_state", "failed to read lesson records", err)
	}
	records := make(map[string]domain.LessonProgressRecord, len(list))
	for _, rec := range list {
		records[rec.LessonID] = rec
		st.Lessons[rec.LessonID] = rec.Status
	}

	return st, records, nil
}

func (s *lessonGate) view(l domain.Lesson, st unlock.LearnerState, records map[string]domain.LessonProgressRecord) LessonView {
	v := LessonView{Lesson: l, Status: s.rules.LessonStatus(l, st)}
	if rec, ok := records[l.ID]; ok && v.Status == domain.LessonCompleted {
		v.CompletedAt = rec.CompletedAt
	}
	return v
}
