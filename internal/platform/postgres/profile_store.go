package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
)

// PostgresProfileStore implements store.ProfileStore.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a profile store on db.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Get implements store.ProfileStore.Get.
func (s *PostgresProfileStore) Get(ctx context.Context, learnerID uuid.UUID) (*domain.ProfileStats, error) {
	var p domain.ProfileStats
	err := s.db.QueryRowContext(ctx, `
		SELECT learner_id, points, streak_count, level, daily_goal, plan_tier, updated_at
		FROM profiles WHERE learner_id = $1
	`, learnerID).Scan(
		&p.LearnerID,
		&p.Points,
		&p.StreakCount,
		&p.Level,
		&p.DailyGoal,
		&p.PlanTier,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	return &p, nil
}

// EnsureExists implements store.ProfileStore.EnsureExists.
func (s *PostgresProfileStore) EnsureExists(ctx context.Context, profile domain.ProfileStats) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (learner_id, points, streak_count, level, daily_goal, plan_tier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (learner_id) DO NOTHING
	`, profile.LearnerID, profile.Points, profile.StreakCount, profile.Level,
		profile.DailyGoal, profile.PlanTier, now)
	if err != nil {
		log.Error("failed to ensure profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", profile.LearnerID.String()))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		log.Info("profile created", slog.String("learner_id", profile.LearnerID.String()))
	}
	return n > 0, nil
}

// AddPoints implements store.ProfileStore.AddPoints.
func (s *PostgresProfileStore) AddPoints(ctx context.Context, learnerID uuid.UUID, points int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET points = points + $2, updated_at = $3
		WHERE learner_id = $1
	`, learnerID, points, time.Now().UTC())
	if err != nil {
		log.Error("failed to add points",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.Int("points", points))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrProfileNotFound)
}
