package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// ProfileStore reads the learner profile fields the engine consumes and
// credits points.
type ProfileStore interface {
	// Get retrieves the learner's profile.
	// Returns ErrProfileNotFound if the learner has none.
	Get(ctx context.Context, learnerID uuid.UUID) (*domain.ProfileStats, error)

	// EnsureExists inserts profile unless the learner already has one and
	// reports whether it was created.
	EnsureExists(ctx context.Context, profile domain.ProfileStats) (bool, error)

	// AddPoints atomically adds points to the learner's total.
	// Returns ErrProfileNotFound if the learner has no profile.
	AddPoints(ctx context.Context, learnerID uuid.UUID, points int) error
}
