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
)

const progressColumns = `learner_id, item_id, status, attempts, correct_attempts,
		last_practiced_at, mastered_at, created_at, updated_at`

// PostgresProgressStore implements store.ProgressStore.
// It needs a *sql.DB rather than a DBTX because Apply runs its own transaction.
type PostgresProgressStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProgressStore creates a progress store on db.
func NewPostgresProgressStore(db *sql.DB, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Get implements store.ProgressStore.Get.
func (s *PostgresProgressStore) Get(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM progress WHERE learner_id = $1 AND item_id = $2`

	rec, err := scanProgress(s.db.QueryRowContext(ctx, query, learnerID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID))
		return nil, MapError(err)
	}

	return rec, nil
}

// Apply implements store.ProgressStore.Apply.
//
// The row is created if missing and then locked with SELECT ... FOR UPDATE,
// so concurrent answers for the same item are applied one after the other.
func (s *PostgresProgressStore) Apply(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	mutate store.ProgressMutator,
) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result domain.ProgressRecord
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().UTC()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO progress (learner_id, item_id, status, attempts, correct_attempts, created_at, updated_at)
			VALUES ($1, $2, $3, 0, 0, $4, $4)
			ON CONFLICT (learner_id, item_id) DO NOTHING
		`, learnerID, itemID, domain.ProgressNotStarted, now)
		if err != nil {
			return store.NewStoreError("progress", "apply", "failed to create row", MapError(err))
		}

		current, err := scanProgress(tx.QueryRowContext(ctx,
			`SELECT `+progressColumns+` FROM progress WHERE learner_id = $1 AND item_id = $2 FOR UPDATE`,
			learnerID, itemID))
		if err != nil {
			return store.NewStoreError("progress", "apply", "failed to lock row", MapError(err))
		}

		next, err := mutate(*current)
		if err != nil {
			return err
		}

		next.LearnerID = learnerID
		next.ItemID = itemID
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = now
		if err := next.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE progress
			SET status = $3, attempts = $4, correct_attempts = $5,
				last_practiced_at = $6, mastered_at = $7, updated_at = $8
			WHERE learner_id = $1 AND item_id = $2
		`, learnerID, itemID, next.Status, next.Attempts, next.CorrectAttempts,
			next.LastPracticedAt, next.MasteredAt, next.UpdatedAt)
		if err != nil {
			return store.NewStoreError("progress", "apply", "failed to update row", MapError(err))
		}

		result = next
		return nil
	})
	if err != nil {
		log.Error("failed to apply progress update",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID))
		return nil, err
	}

	log.Debug("progress updated",
		slog.String("learner_id", learnerID.String()),
		slog.String("item_id", itemID),
		slog.String("status", string(result.Status)),
		slog.Int("attempts", result.Attempts))
	return &result, nil
}

// CountMastered implements store.ProgressStore.CountMastered.
func (s *PostgresProgressStore) CountMastered(ctx context.Context, learnerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM progress WHERE learner_id = $1 AND mastered_at IS NOT NULL`,
		learnerID,
	).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// MasteredItemIDs implements store.ProgressStore.MasteredItemIDs.
func (s *PostgresProgressStore) MasteredItemIDs(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM progress WHERE learner_id = $1 AND mastered_at IS NOT NULL ORDER BY item_id`,
		learnerID)
	if err != nil {
		log.Error("failed to query mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan mastered item", slog.String("error", err.Error()))
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate mastered items", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return ids, nil
}

func scanProgress(row *sql.Row) (*domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	err := row.Scan(
		&rec.LearnerID,
		&rec.ItemID,
		&rec.Status,
		&rec.Attempts,
		&rec.CorrectAttempts,
		&rec.LastPracticedAt,
		&rec.MasteredAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
