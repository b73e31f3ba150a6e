package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/events"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
)

// BadgeView is a catalog badge merged with the learner's unlock state.
type BadgeView struct {
	badge.Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	IsNew      bool       `json:"is_new"`
	Progress   float64    `json:"progress"`
}

// AchievementEvaluator unlocks badges whose thresholds a learner has met.
type AchievementEvaluator interface {
	// Evaluate unlocks every badge the learner now qualifies for and returns
	// the ones this call unlocked. Each badge's reward is credited together
	// with its record, so a failure part way leaves earlier badges complete
	// and later ones for the next call. A celebration event is emitted for
	// the badges unlocked. An unchanged snapshot unlocks nothing.
	Evaluate(ctx context.Context, learnerID uuid.UUID) ([]badge.Definition, error)

	// Stats returns the snapshot badges are evaluated against.
	Stats(ctx context.Context, learnerID uuid.UUID) (badge.Stats, error)

	// List returns every catalog badge with the learner's state.
	List(ctx context.Context, learnerID uuid.UUID) ([]BadgeView, error)

	// Pending returns unlocked badges still waiting to be celebrated.
	Pending(ctx context.Context, learnerID uuid.UUID) ([]BadgeView, error)

	// Acknowledge clears the new flag for badgeIDs, or for every pending
	// badge when badgeIDs is empty. Unknown ids are rejected before any
	// write.
	Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error)
}

type achievementEvaluator struct {
	achievements store.AchievementStore
	progress     store.ProgressStore
	profiles     store.ProfileStore
	activity     ActivityAggregator
	badges       *badge.Catalog
	emitter      events.EventEmitter
	logger       *slog.Logger
	now          func() time.Time
}

// NewAchievementEvaluator creates an AchievementEvaluator.
// It returns an error if any dependency is nil.
func NewAchievementEvaluator(
	achievements store.AchievementStore,
	progress store.ProgressStore,
	profiles store.ProfileStore,
	activity ActivityAggregator,
	badges *badge.Catalog,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (AchievementEvaluator, error) {
	if achievements == nil {
		return nil, domain.NewValidationError("achievementStore", "cannot be nil", domain.ErrValidation)
	}
	if progress == nil {
		return nil, domain.NewValidationError("progressStore", "cannot be nil", domain.ErrValidation)
	}
	if profiles == nil {
		return nil, domain.NewValidationError("profileStore", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activityAggregator", "cannot be nil", domain.ErrValidation)
	}
	if badges == nil {
		return nil, domain.NewValidationError("badgeCatalog", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("eventEmitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &achievementEvaluator{
		achievements: achievements,
		progress:     progress,
		profiles:     profiles,
		activity:     activity,
		badges:       badges,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "achievement_evaluator")),
		now:          time.Now,
	}, nil
}

var _ AchievementEvaluator = (*achievementEvaluator)(nil)

// Evaluate implements AchievementEvaluator.Evaluate.
func (s *achievementEvaluator) Evaluate(ctx context.Context, learnerID uuid.UUID) ([]badge.Definition, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats, err := s.Stats(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	records, err := s.achievements.List(ctx, learnerID)
	if err != nil {
		log.Error("failed to list achievements",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("evaluate_achievements", "failed to read achievements", err)
	}
	unlocked := make(map[string]bool, len(records))
	for _, rec := range records {
		unlocked[rec.BadgeID] = true
	}

	now := s.now().UTC()
	var (
		newBadges []badge.Definition
		points    int
	)
	for _, def := range s.badges.Eligible(stats, unlocked) {
		created, err := s.achievements.Unlock(ctx, learnerID, def.ID, def.Points, now)
		if err != nil {
			log.Error("failed to unlock badge",
				slog.String("error", err.Error()),
				slog.String("learner_id", learnerID.String()),
				slog.String("badge_id", def.ID))
			if len(newBadges) > 0 {
				s.celebrate(ctx, learnerID, newBadges)
			}
			return newBadges, NewServiceError("evaluate_achievements", "failed to unlock badge", err)
		}
		if !created {
			continue
		}
		newBadges = append(newBadges, def)
		points += def.Points
	}

	if len(newBadges) == 0 {
		return nil, nil
	}

	s.celebrate(ctx, learnerID, newBadges)

	log.Info("badges unlocked",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(newBadges)),
		slog.Int("points", points))
	return newBadges, nil
}

// celebrate emits the celebration event. Delivery failures are logged only;
// the records stay flagged new and are served by Pending.
func (s *achievementEvaluator) celebrate(ctx context.Context, learnerID uuid.UUID, defs []badge.Definition) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	celebrated := make([]events.CelebratedBadge, 0, len(defs))
	for _, d := range defs {
		celebrated = append(celebrated, events.CelebratedBadge{
			ID:     d.ID,
			Name:   d.Name,
			Rarity: string(d.Rarity),
			Points: d.Points,
		})
	}

	event, err := events.NewCelebrationEvent(learnerID, celebrated)
	if err != nil {
		log.Error("failed to build celebration event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit celebration event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
	}
}

// Stats implements AchievementEvaluator.Stats.
func (s *achievementEvaluator) Stats(ctx context.Context, learnerID uuid.UUID) (badge.Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var stats badge.Stats

	profile, err := s.profiles.Get(ctx, learnerID)
	switch {
	case err == nil:
		stats.ProfileStreak = profile.StreakCount
	case !errors.Is(err, store.ErrProfileNotFound):
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return stats, NewServiceError("badge_stats", "failed to read profile", err)
	}

	stats.MasteredCount, err = s.progress.CountMastered(ctx, learnerID)
	if err != nil {
		log.Error("failed to count mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return stats, NewServiceError("badge_stats", "failed to count mastered items", err)
	}

	stats.GoalStreak, err = s.activity.GoalStreak(ctx, learnerID)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// List implements AchievementEvaluator.List.
func (s *achievementEvaluator) List(ctx context.Context, learnerID uuid.UUID) ([]BadgeView, error) {
	stats, err := s.Stats(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	records, err := s.achievements.List(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list achievements",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("list_achievements", "failed to read achievements", err)
	}
	byID := make(map[string]domain.AchievementRecord, len(records))
	for _, rec := range records {
		byID[rec.BadgeID] = rec
	}

	defs := s.badges.All()
	views := make([]BadgeView, 0, len(defs))
	for _, d := range defs {
		v := BadgeView{Definition: d, Progress: d.Progress(stats)}
		if rec, ok := byID[d.ID]; ok {
			at := rec.UnlockedAt
			v.Unlocked = true
			v.UnlockedAt = &at
			v.IsNew = rec.IsNew
			v.Progress = 1
		}
		views = append(views, v)
	}
	return views, nil
}

// Pending implements AchievementEvaluator.Pending.
func (s *achievementEvaluator) Pending(ctx context.Context, learnerID uuid.UUID) ([]BadgeView, error) {
	records, err := s.achievements.ListNew(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list pending achievements",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("pending_achievements", "failed to read achievements", err)
	}

	views := make([]BadgeView, 0, len(records))
	for _, rec := range records {
		d, ok := s.badges.Get(rec.BadgeID)
		if !ok {
			// Badge retired from the catalog.
			continue
		}
		at := rec.UnlockedAt
		views = append(views, BadgeView{
			Definition: d,
			Unlocked:   true,
			UnlockedAt: &at,
			IsNew:      true,
			Progress:   1,
		})
	}
	return views, nil
}

// Acknowledge implements AchievementEvaluator.Acknowledge.
func (s *achievementEvaluator) Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error) {
	for _, id := range badgeIDs {
		if _, ok := s.badges.Get(id); !ok {
			return 0, domain.NewNotFoundError("badge", id)
		}
	}

	n, err := s.achievements.Acknowledge(ctx, learnerID, badgeIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to acknowledge achievements",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.Int("badge_count", len(badgeIDs)))
		return 0, NewServiceError("acknowledge_achievements", "failed to clear new flags", err)
	}
	return n, nil
}
