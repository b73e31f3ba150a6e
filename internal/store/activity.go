package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/activity"
)

// ActivityStore persists the per-learner daily rollup.
type ActivityStore interface {
	// Increment adds delta to the learner's row for date, creating it when it
	// does not exist, in a single atomic upsert. It returns the updated row.
	Increment(ctx context.Context, learnerID uuid.UUID, date time.Time, delta activity.Delta) (*domain.DailyActivityRecord, error)

	// Get retrieves the row for date.
	// Returns ErrActivityNotFound if the learner did not practice that day.
	Get(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyActivityRecord, error)

	// ListSince returns rows dated on or after from, most recent first.
	ListSince(ctx context.Context, learnerID uuid.UUID, from time.Time) ([]domain.DailyActivityRecord, error)
}
