// Package practice runs a submitted answer through the progress engine:
// scoring, mastery, daily activity, points, lesson completion and badges.
package practice

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/domain/exercise"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/service"
	"github.com/fluentpath/fluent-api/internal/store"
)

// SaveWarning is the learner-facing message attached to an outcome whose
// verdict could not be fully saved.
const SaveWarning = "your answer was scored but your progress could not be saved; please try again"

// SubmitRequest is one answer to one exercise.
type SubmitRequest struct {
	ItemID  string           `json:"item_id" validate:"required"`
	Variant exercise.Variant `json:"variant" validate:"required"`
	Answer  exercise.Answer  `json:"answer"`
	// Options are the multiple choice options the learner was shown. When
	// present the selected answer must be one of them.
	Options []string `json:"options,omitempty"`
}

// Outcome is the result of a submitted answer. Verdict is always set;
// everything else reflects the durable steps that completed.
type Outcome struct {
	Verdict  exercise.Verdict       `json:"verdict"`
	Progress *domain.ProgressRecord `json:"progress,omitempty"`
	Points   int                    `json:"points"`
	// Mastered is true when this answer mastered the item for the first time.
	Mastered        bool                      `json:"mastered"`
	LessonCompleted *service.LessonCompletion `json:"lesson_completed,omitempty"`
	NewBadges       []badge.Definition        `json:"new_badges"`
	Saved           bool                      `json:"saved"`
	Warning         string                    `json:"warning,omitempty"`
}

// Service is the practice entry point.
type Service interface {
	// SubmitAnswer scores req and records it. Unknown items and invalid
	// answers abort before anything is written. Items GetExercise would
	// refuse are refused here with the same errors, before any progress
	// is recorded.
	//
	// When a durable step fails the outcome is still returned together with
	// a *domain.PersistenceError naming the step; later steps are skipped.
	// Every step is safe to retry.
	SubmitAnswer(ctx context.Context, learnerID uuid.UUID, req SubmitRequest) (*Outcome, error)

	// GetExercise builds a renderable exercise for itemID. It fails with
	// service.ErrLessonLocked when the item's lesson is locked and with
	// service.ErrPlanLimitReached when a new sentence exceeds the plan.
	GetExercise(ctx context.Context, learnerID uuid.UUID, itemID string, variant exercise.Variant) (*exercise.Exercise, error)
}

// Deps groups the collaborators of the practice service.
type Deps struct {
	Catalog      catalog.Catalog
	Evaluator    *exercise.Evaluator
	Profiles     store.ProfileStore
	Mastery      service.MasteryTracker
	Activity     service.ActivityAggregator
	Lessons      service.LessonGate
	Achievements service.AchievementEvaluator
	Plans        service.PlanGate
	// DefaultDailyGoal is the goal given to learners on their first answer.
	DefaultDailyGoal int
}

type practiceService struct {
	Deps
	logger  *slog.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

// NewService creates the practice service.
// It returns an error if any dependency is nil.
func NewService(deps Deps, logger *slog.Logger) (Service, error) {
	switch {
	case deps.Catalog == nil:
		return nil, domain.NewValidationError("catalog", "cannot be nil", domain.ErrValidation)
	case deps.Profiles == nil:
		return nil, domain.NewValidationError("profileStore", "cannot be nil", domain.ErrValidation)
	case deps.Mastery == nil:
		return nil, domain.NewValidationError("masteryTracker", "cannot be nil", domain.ErrValidation)
	case deps.Activity == nil:
		return nil, domain.NewValidationError("activityAggregator", "cannot be nil", domain.ErrValidation)
	case deps.Lessons == nil:
		return nil, domain.NewValidationError("lessonGate", "cannot be nil", domain.ErrValidation)
	case deps.Achievements == nil:
		return nil, domain.NewValidationError("achievementEvaluator", "cannot be nil", domain.ErrValidation)
	case deps.Plans == nil:
		return nil, domain.NewValidationError("planGate", "cannot be nil", domain.ErrValidation)
	}
	if deps.Evaluator == nil {
		deps.Evaluator = exercise.NewDefaultEvaluator()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &practiceService{
		Deps:   deps,
		logger: logger.With(slog.String("component", "practice_service")),
		now:    time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}, nil
}

var _ Service = (*practiceService)(nil)

// SubmitAnswer implements Service.SubmitAnswer.
func (s *practiceService) SubmitAnswer(ctx context.Context, learnerID uuid.UUID, req SubmitRequest) (*Outcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("item_id", req.ItemID))

	item, err := s.Catalog.Item(req.ItemID)
	if err != nil {
		return nil, err
	}

	ex, err := exercise.Build(item, req.Variant, nil, s.newRand())
	if err != nil {
		return nil, err
	}
	ex.Options = req.Options

	verdict, err := s.Evaluator.Evaluate(ex, req.Answer)
	if err != nil {
		log.Debug("answer rejected", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now().UTC()
	out := &Outcome{Verdict: verdict, NewBadges: []badge.Definition{}}

	s.ensureLearner(ctx, learnerID, log)

	if err := s.checkAccess(ctx, learnerID, item, "submit_answer"); err != nil {
		log.Debug("answer refused", slog.String("error", err.Error()))
		return nil, err
	}

	result, err := s.Mastery.RecordAnswer(ctx, learnerID, item.ID, verdict.Correct, now)
	if err != nil {
		return s.unsaved(out, err, log)
	}
	out.Progress = &result.Record
	out.Points = result.Transition.Points
	out.Mastered = result.Transition.FirstMastery

	if _, err := s.Activity.Record(ctx, learnerID, result.Transition, now); err != nil {
		return s.unsaved(out, err, log)
	}

	if out.Points > 0 {
		if err := s.Profiles.AddPoints(ctx, learnerID, out.Points); err != nil {
			return s.unsaved(out, domain.NewPersistenceError("points", err), log)
		}
	}

	if out.Mastered {
		completion, err := s.Lessons.CompleteIfMastered(ctx, learnerID, item.ID, now)
		if err != nil {
			return s.unsaved(out, domain.NewPersistenceError("lesson", err), log)
		}
		if completion != nil && completion.Completed {
			out.LessonCompleted = completion
		}
	}

	newBadges, err := s.Achievements.Evaluate(ctx, learnerID)
	if len(newBadges) > 0 {
		out.NewBadges = newBadges
	}
	if err != nil {
		return s.unsaved(out, domain.NewPersistenceError("achievements", err), log)
	}

	out.Saved = true
	log.Info("answer recorded",
		slog.Bool("correct", verdict.Correct),
		slog.Int("points", out.Points),
		slog.Bool("mastered", out.Mastered),
		slog.Int("new_badges", len(out.NewBadges)))
	return out, nil
}

// unsaved returns out flagged unsaved with err, which must already name
// the failed step.
func (s *practiceService) unsaved(out *Outcome, err error, log *slog.Logger) (*Outcome, error) {
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		err = domain.NewPersistenceError("unknown", err)
	}
	log.Warn("answer scored but not fully saved", slog.String("error", err.Error()))

	out.Saved = false
	out.Warning = SaveWarning
	return out, err
}

// ensureLearner creates the profile and lesson records of a first-time
// learner. Failures are logged only; later steps report their own errors.
func (s *practiceService) ensureLearner(ctx context.Context, learnerID uuid.UUID, log *slog.Logger) {
	created, err := s.Profiles.EnsureExists(ctx, domain.NewProfileStats(learnerID, s.DefaultDailyGoal))
	if err != nil {
		log.Warn("failed to ensure learner profile", slog.String("error", err.Error()))
		return
	}
	if !created {
		return
	}

	if _, err := s.Lessons.InitializeLearner(ctx, learnerID); err != nil {
		log.Warn("failed to initialize learner lessons", slog.String("error", err.Error()))
		return
	}
	log.Info("learner initialized")
}

// GetExercise implements Service.GetExercise.
func (s *practiceService) GetExercise(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	variant exercise.Variant,
) (*exercise.Exercise, error) {
	if !variant.Valid() {
		return nil, domain.NewValidationError("variant", "is not a supported exercise variant", domain.ErrValidation)
	}

	item, err := s.Catalog.Item(itemID)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(ctx, learnerID, item, "get_exercise"); err != nil {
		return nil, err
	}

	ex, err := exercise.Build(item, variant, s.Catalog.ItemsInLevel(item.Level), s.newRand())
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// checkAccess fails with service.ErrLessonLocked when the item's lesson is
// locked, and with service.ErrPlanLimitReached when a not yet started item
// would exceed the learner's sentence allowance.
func (s *practiceService) checkAccess(ctx context.Context, learnerID uuid.UUID, item domain.Item, op string) error {
	lesson, err := s.Lessons.LessonStatus(ctx, learnerID, item.LessonID)
	if err != nil {
		return err
	}
	if lesson.Status == domain.LessonLocked {
		return service.NewServiceError(op, "lesson is locked", service.ErrLessonLocked)
	}

	progress, err := s.Mastery.Progress(ctx, learnerID, item.ID)
	if err != nil {
		return err
	}
	if progress.Status == domain.ProgressNotStarted {
		return s.Plans.Check(ctx, learnerID, plan.FeatureSentences)
	}
	return nil
}
