package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const achievementColumns = `learner_id, badge_id, unlocked_at, is_new`

// PostgresAchievementStore implements store.AchievementStore.
type PostgresAchievementStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAchievementStore creates an achievement store on db.
func NewPostgresAchievementStore(db *sql.DB, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// Unlock implements store.AchievementStore.Unlock. The primary key on
// (learner_id, badge_id) decides which of several concurrent callers wins.
// The insert and the reward credit share one transaction.
func (s *PostgresAchievementStore) Unlock(
	ctx context.Context,
	learnerID uuid.UUID,
	badgeID string,
	reward int,
	now time.Time,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created := false
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO achievements (learner_id, badge_id, unlocked_at, is_new)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (learner_id, badge_id) DO NOTHING
		`, learnerID, badgeID, now.UTC())
		if err != nil {
			return MapError(err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		if reward != 0 {
			result, err = tx.ExecContext(ctx, `
				UPDATE profiles SET points = points + $2, updated_at = $3
				WHERE learner_id = $1
			`, learnerID, reward, now.UTC())
			if err != nil {
				return MapError(err)
			}
			if err := CheckRowsAffected(result, store.ErrProfileNotFound); err != nil {
				return err
			}
		}

		created = true
		return nil
	})
	if err != nil {
		log.Error("failed to unlock achievement",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("badge_id", badgeID),
			slog.Int("reward", reward))
		return false, err
	}
	if !created {
		return false, nil
	}

	log.Info("achievement unlocked",
		slog.String("learner_id", learnerID.String()),
		slog.String("badge_id", badgeID),
		slog.Int("reward", reward))
	return true, nil
}

// List implements store.AchievementStore.List.
func (s *PostgresAchievementStore) List(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error) {
	return s.query(ctx, `SELECT `+achievementColumns+`
		FROM achievements WHERE learner_id = $1
		ORDER BY unlocked_at, badge_id`, learnerID)
}

// ListNew implements store.AchievementStore.ListNew.
func (s *PostgresAchievementStore) ListNew(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error) {
	return s.query(ctx, `SELECT `+achievementColumns+`
		FROM achievements WHERE learner_id = $1 AND is_new
		ORDER BY unlocked_at, badge_id`, learnerID)
}

// Acknowledge implements store.AchievementStore.Acknowledge.
func (s *PostgresAchievementStore) Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE achievements SET is_new = FALSE WHERE learner_id = ? AND is_new`
	args := []any{learnerID}
	if len(badgeIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND badge_id IN (?)`, learnerID, badgeIDs)
		if err != nil {
			return 0, err
		}
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to acknowledge achievements",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Debug("achievements acknowledged",
		slog.String("learner_id", learnerID.String()),
		slog.Int64("cleared", n))
	return int(n), nil
}

func (s *PostgresAchievementStore) query(ctx context.Context, query string, args ...any) ([]domain.AchievementRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query achievements", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer rows.Close()

	records := []domain.AchievementRecord{}
	if err := sqlx.StructScan(rows, &records); err != nil {
		log.Error("failed to scan achievements", slog.String("error", err.Error()))
		return nil, err
	}
	return records, nil
}
