package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// LessonStore persists explicit per-learner lesson state.
type LessonStore interface {
	// Initialize inserts the given records, skipping lessons that already
	// have one. It returns how many rows were created.
	Initialize(ctx context.Context, records []domain.LessonProgressRecord) (int, error)

	// List returns every lesson record of the learner.
	List(ctx context.Context, learnerID uuid.UUID) ([]domain.LessonProgressRecord, error)

	// Get retrieves one lesson record.
	// Returns ErrLessonProgressNotFound if none exists.
	Get(ctx context.Context, learnerID uuid.UUID, lessonID string) (*domain.LessonProgressRecord, error)

	// Complete marks the lesson completed. completed_at is set only the first
	// time; repeated calls are no-ops. The bool reports whether this call
	// performed the completion.
	Complete(ctx context.Context, learnerID uuid.UUID, lessonID string, now time.Time) (*domain.LessonProgressRecord, bool, error)

	// Unlock marks the lesson unlocked unless it is already unlocked or completed.
	Unlock(ctx context.Context, learnerID uuid.UUID, lessonID string, now time.Time) error

	// CountCompletedBetween counts lessons completed in [from, to).
	CountCompletedBetween(ctx context.Context, learnerID uuid.UUID, from, to time.Time) (int, error)
}
