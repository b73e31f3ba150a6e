package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageCounter is a persisted per-learner, per-day counter of a quota feature.
type UsageCounter interface {
	// Count returns the counter value for day, 0 when nothing was recorded.
	Count(ctx context.Context, learnerID uuid.UUID, feature string, day time.Time) (int, error)

	// IncrementWithin adds one to the counter for day unless it has already
	// reached limit. A negative limit means unlimited. It returns the value
	// after the call and whether the increment happened.
	IncrementWithin(ctx context.Context, learnerID uuid.UUID, feature string, day time.Time, limit int) (int, bool, error)
}
