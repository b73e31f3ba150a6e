package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
)

// PostgresUsageCounter implements store.UsageCounter on the usage_counters
// table. It is used when no Redis server is configured.
type PostgresUsageCounter struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageCounter creates a usage counter on db.
func NewPostgresUsageCounter(db store.DBTX, logger *slog.Logger) *PostgresUsageCounter {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUsageCounter{
		db:     db,
		logger: logger.With(slog.String("component", "usage_counter")),
	}
}

var _ store.UsageCounter = (*PostgresUsageCounter)(nil)

// Count implements store.UsageCounter.Count.
func (c *PostgresUsageCounter) Count(ctx context.Context, learnerID uuid.UUID, feature string, day time.Time) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE learner_id = $1 AND feature = $2 AND day = $3`,
		learnerID, feature, dateParam(day),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to read usage counter",
			slog.String("error", err.Error()),
			slog.String("feature", feature))
		return 0, MapError(err)
	}
	return count, nil
}

// IncrementWithin implements store.UsageCounter.IncrementWithin.
//
// The limit check is part of the upsert's WHERE clause, so two concurrent
// requests cannot both take the last slot.
func (c *PostgresUsageCounter) IncrementWithin(
	ctx context.Context,
	learnerID uuid.UUID,
	feature string,
	day time.Time,
	limit int,
) (int, bool, error) {
	if limit == 0 {
		count, err := c.Count(ctx, learnerID, feature, day)
		return count, false, err
	}

	query := `
		INSERT INTO usage_counters (learner_id, feature, day, count, updated_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (learner_id, feature, day) DO UPDATE SET
			count = usage_counters.count + 1,
			updated_at = EXCLUDED.updated_at
		WHERE $5 < 0 OR usage_counters.count < $5
		RETURNING count`

	var count int
	err := c.db.QueryRowContext(ctx, query,
		learnerID, feature, dateParam(day), time.Now().UTC(), limit,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		count, err := c.Count(ctx, learnerID, feature, day)
		return count, false, err
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to increment usage counter",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("feature", feature))
		return 0, false, MapError(err)
	}

	return count, true, nil
}
