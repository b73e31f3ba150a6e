package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/activity"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const activityColumns = `learner_id, activity_date, practiced_count, mastered_count,
		points_earned, created_at, updated_at`

// PostgresActivityStore implements store.ActivityStore.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a daily activity store on db.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Increment implements store.ActivityStore.Increment as a single upsert, so
// concurrent answers on the same day add up instead of overwriting each other.
func (s *PostgresActivityStore) Increment(
	ctx context.Context,
	learnerID uuid.UUID,
	date time.Time,
	delta activity.Delta,
) (*domain.DailyActivityRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if delta.Practiced < 0 || delta.Mastered < 0 || delta.Points < 0 || delta.Mastered > delta.Practiced {
		return nil, fmt.Errorf("%w: invalid activity delta %+v", store.ErrInvalidEntity, delta)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO daily_activity (learner_id, activity_date, practiced_count, mastered_count,
			points_earned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (learner_id, activity_date) DO UPDATE SET
			practiced_count = daily_activity.practiced_count + EXCLUDED.practiced_count,
			mastered_count  = daily_activity.mastered_count + EXCLUDED.mastered_count,
			points_earned   = daily_activity.points_earned + EXCLUDED.points_earned,
			updated_at      = EXCLUDED.updated_at
		RETURNING ` + activityColumns

	rec, err := scanActivity(s.db.QueryRowContext(ctx, query,
		learnerID, dateParam(date), delta.Practiced, delta.Mastered, delta.Points, now))
	if err != nil {
		log.Error("failed to increment daily activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("date", dateParam(date)))
		return nil, store.NewStoreError("daily_activity", "increment", "upsert failed", MapError(err))
	}

	log.Debug("daily activity incremented",
		slog.String("learner_id", learnerID.String()),
		slog.String("date", dateParam(date)),
		slog.Int("practiced_count", rec.PracticedCount))
	return rec, nil
}

// Get implements store.ActivityStore.Get.
func (s *PostgresActivityStore) Get(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyActivityRecord, error) {
	query := `SELECT ` + activityColumns + ` FROM daily_activity WHERE learner_id = $1 AND activity_date = $2`

	rec, err := scanActivity(s.db.QueryRowContext(ctx, query, learnerID, dateParam(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrActivityNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get daily activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	return rec, nil
}

// ListSince implements store.ActivityStore.ListSince.
func (s *PostgresActivityStore) ListSince(ctx context.Context, learnerID uuid.UUID, from time.Time) ([]domain.DailyActivityRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + activityColumns + `
		FROM daily_activity
		WHERE learner_id = $1 AND activity_date >= $2
		ORDER BY activity_date DESC`

	rows, err := s.db.QueryContext(ctx, query, learnerID, dateParam(from))
	if err != nil {
		log.Error("failed to query daily activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer rows.Close()

	records := []domain.DailyActivityRecord{}
	if err := sqlx.StructScan(rows, &records); err != nil {
		log.Error("failed to scan daily activity", slog.String("error", err.Error()))
		return nil, err
	}
	for i := range records {
		records[i].Date = domain.CalendarDate(records[i].Date, time.UTC)
	}
	return records, nil
}

func scanActivity(row *sql.Row) (*domain.DailyActivityRecord, error) {
	var rec domain.DailyActivityRecord
	err := row.Scan(
		&rec.LearnerID,
		&rec.Date,
		&rec.PracticedCount,
		&rec.MasteredCount,
		&rec.PointsEarned,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Date = domain.CalendarDate(rec.Date, time.UTC)
	return &rec, nil
}
