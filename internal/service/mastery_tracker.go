package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
)

// MasteryResult is the stored record after an answer together with the
// transition the answer caused.
type MasteryResult struct {
	Record     domain.ProgressRecord `json:"progress"`
	Transition mastery.Transition    `json:"transition"`
}

// MasteryTracker records answers against per-item progress.
type MasteryTracker interface {
	// RecordAnswer applies one scored answer to the learner's progress on
	// itemID. The read-modify-write is atomic per (learner, item), so
	// concurrent answers never lose an attempt.
	//
	// Points are computed in the returned transition but not credited; the
	// caller credits the profile once the daily rollup is written.
	//
	// Returns a *domain.NotFoundError for an unknown item and a
	// *domain.PersistenceError when the store write fails.
	RecordAnswer(ctx context.Context, learnerID uuid.UUID, itemID string, correct bool, now time.Time) (*MasteryResult, error)

	// Progress returns the learner's record for itemID. A learner that never
	// answered the item gets an unsaved not_started record.
	Progress(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error)

	// MasteredCount returns how many items the learner has mastered.
	MasteredCount(ctx context.Context, learnerID uuid.UUID) (int, error)
}

type masteryTracker struct {
	progress store.ProgressStore
	catalog  catalog.Catalog
	params   mastery.Params
	logger   *slog.Logger
	now      func() time.Time
}

// NewMasteryTracker creates a MasteryTracker.
// It returns an error if any dependency is nil.
func NewMasteryTracker(
	progress store.ProgressStore,
	content catalog.Catalog,
	params mastery.Params,
	logger *slog.Logger,
) (MasteryTracker, error) {
	if progress == nil {
		return nil, domain.NewValidationError("progressStore", "cannot be nil", domain.ErrValidation)
	}
	if content == nil {
		return nil, domain.NewValidationError("catalog", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &masteryTracker{
		progress: progress,
		catalog:  content,
		params:   params,
		logger:   logger.With(slog.String("component", "mastery_tracker")),
		now:      time.Now,
	}, nil
}

var _ MasteryTracker = (*masteryTracker)(nil)

// RecordAnswer implements MasteryTracker.RecordAnswer.
func (s *masteryTracker) RecordAnswer(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	correct bool,
	now time.Time,
) (*MasteryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.catalog.Item(itemID); err != nil {
		return nil, err
	}

	var transition mastery.Transition
	rec, err := s.progress.Apply(ctx, learnerID, itemID, func(current domain.ProgressRecord) (domain.ProgressRecord, error) {
		next, tr := mastery.Apply(current, correct, now.UTC(), s.params)
		transition = tr
		return next, nil
	})
	if err != nil {
		log.Error("failed to record answer",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID))
		return nil, domain.NewPersistenceError("progress", err)
	}

	transition.ItemID = itemID
	if transition.Changed() {
		log.Info("item status changed",
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID),
			slog.String("from", string(transition.From)),
			slog.String("to", string(transition.To)))
	}

	return &MasteryResult{Record: *rec, Transition: transition}, nil
}

// Progress implements MasteryTracker.Progress.
func (s *masteryTracker) Progress(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	if _, err := s.catalog.Item(itemID); err != nil {
		return nil, err
	}

	rec, err := s.progress.Get(ctx, learnerID, itemID)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, store.ErrProgressNotFound) {
		return domain.NewProgressRecord(learnerID, itemID, s.now().UTC())
	}

	logger.FromContextOrDefault(ctx, s.logger).Error("failed to get progress",
		slog.String("error", err.Error()),
		slog.String("learner_id", learnerID.String()),
		slog.String("item_id", itemID))
	return nil, NewServiceError("get_progress", "failed to read progress", err)
}

// MasteredCount implements MasteryTracker.MasteredCount.
func (s *masteryTracker) MasteredCount(ctx context.Context, learnerID uuid.UUID) (int, error) {
	n, err := s.progress.CountMastered(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, NewServiceError("mastered_count", "failed to count mastered items", err)
	}
	return n, nil
}
