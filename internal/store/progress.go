package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// ProgressMutator computes the next state of a progress record. It receives
// the current row, already locked, and must not retain it.
type ProgressMutator func(current domain.ProgressRecord) (domain.ProgressRecord, error)

// ProgressStore persists per-(learner, item) mastery records.
type ProgressStore interface {
	// Get retrieves the record for learner and item.
	// Returns ErrProgressNotFound if the learner never answered the item.
	Get(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error)

	// Apply atomically creates the record if missing, locks it, passes it to
	// mutate and stores the result. Concurrent calls for the same pair are
	// serialised so no attempt is lost. The mutated record is validated
	// before it is written; an invalid record yields ErrInvalidEntity.
	Apply(ctx context.Context, learnerID uuid.UUID, itemID string, mutate ProgressMutator) (*domain.ProgressRecord, error)

	// CountMastered returns how many items the learner has ever mastered,
	// including those now due for review.
	CountMastered(ctx context.Context, learnerID uuid.UUID) (int, error)

	// MasteredItemIDs returns the ids of every item the learner has mastered.
	MasteredItemIDs(ctx context.Context, learnerID uuid.UUID) ([]string, error)
}
