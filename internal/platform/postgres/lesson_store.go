package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const lessonColumns = `learner_id, lesson_id, status, completed_at, created_at, updated_at`

// PostgresLessonStore implements store.LessonStore.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a lesson progress store on db.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

var _ store.LessonStore = (*PostgresLessonStore)(nil)

// Initialize implements store.LessonStore.Initialize.
func (s *PostgresLessonStore) Initialize(ctx context.Context, records []domain.LessonProgressRecord) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO lesson_progress (learner_id, lesson_id, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (learner_id, lesson_id) DO NOTHING
	`

	created := 0
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return created, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		result, err := s.db.ExecContext(ctx, query,
			rec.LearnerID, rec.LessonID, rec.Status, rec.CompletedAt, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			log.Error("failed to initialize lesson progress",
				slog.String("error", err.Error()),
				slog.String("learner_id", rec.LearnerID.String()),
				slog.String("lesson_id", rec.LessonID))
			return created, MapError(err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("failed to get rows affected: %w", err)
		}
		created += int(n)
	}

	if created > 0 {
		log.Info("lesson progress initialized", slog.Int("created", created))
	}
	return created, nil
}

// List implements store.LessonStore.List.
func (s *PostgresLessonStore) List(ctx context.Context, learnerID uuid.UUID) ([]domain.LessonProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lesson_progress WHERE learner_id = $1 ORDER BY lesson_id`,
		learnerID)
	if err != nil {
		log.Error("failed to query lesson progress",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer rows.Close()

	records := []domain.LessonProgressRecord{}
	if err := sqlx.StructScan(rows, &records); err != nil {
		log.Error("failed to scan lesson progress", slog.String("error", err.Error()))
		return nil, err
	}
	return records, nil
}

// Get implements store.LessonStore.Get.
func (s *PostgresLessonStore) Get(ctx context.Context, learnerID uuid.UUID, lessonID string) (*domain.LessonProgressRecord, error) {
	rec, err := scanLesson(s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lesson_progress WHERE learner_id = $1 AND lesson_id = $2`,
		learnerID, lessonID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLessonProgressNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get lesson progress",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID))
		return nil, MapError(err)
	}
	return rec, nil
}

// Complete implements store.LessonStore.Complete. The conditional upsert
// leaves an already completed row alone, so completed_at keeps its first value.
func (s *PostgresLessonStore) Complete(
	ctx context.Context,
	learnerID uuid.UUID,
	lessonID string,
	now time.Time,
) (*domain.LessonProgressRecord, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO lesson_progress (learner_id, lesson_id, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $4)
		ON CONFLICT (learner_id, lesson_id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
		WHERE lesson_progress.status <> EXCLUDED.status
		RETURNING ` + lessonColumns

	rec, err := scanLesson(s.db.QueryRowContext(ctx, query, learnerID, lessonID, domain.LessonCompleted, now.UTC()))
	switch {
	case err == nil:
		log.Info("lesson completed",
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lessonID))
		return rec, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// Already completed.
		existing, err := s.Get(ctx, learnerID, lessonID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		log.Error("failed to complete lesson",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lessonID))
		return nil, false, MapError(err)
	}
}

// Unlock implements store.LessonStore.Unlock.
func (s *PostgresLessonStore) Unlock(ctx context.Context, learnerID uuid.UUID, lessonID string, now time.Time) error {
	query := `
		INSERT INTO lesson_progress (learner_id, lesson_id, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULL, $4, $4)
		ON CONFLICT (learner_id, lesson_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		WHERE lesson_progress.status = $5
	`

	_, err := s.db.ExecContext(ctx, query, learnerID, lessonID, domain.LessonUnlocked, now.UTC(), domain.LessonLocked)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to unlock lesson",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("lesson_id", lessonID))
		return MapError(err)
	}
	return nil
}

// CountCompletedBetween implements store.LessonStore.CountCompletedBetween.
func (s *PostgresLessonStore) CountCompletedBetween(ctx context.Context, learnerID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lesson_progress
		WHERE learner_id = $1 AND status = $2 AND completed_at >= $3 AND completed_at < $4
	`, learnerID, domain.LessonCompleted, from.UTC(), to.UTC()).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count completed lessons",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

func scanLesson(row *sql.Row) (*domain.LessonProgressRecord, error) {
	var rec domain.LessonProgressRecord
	err := row.Scan(
		&rec.LearnerID,
		&rec.LessonID,
		&rec.Status,
		&rec.CompletedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
