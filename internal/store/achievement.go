package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// AchievementStore persists unlocked badges. The (learner, badge) pair is
// unique; the store enforces it rather than callers checking first.
type AchievementStore interface {
	// Unlock records the badge for the learner with is_new set and adds
	// reward to the learner's points. Both happen or neither does. It
	// reports true only when this call created the record; an existing
	// record is left untouched, nothing is credited, and false is reported.
	Unlock(ctx context.Context, learnerID uuid.UUID, badgeID string, reward int, now time.Time) (bool, error)

	// List returns every unlocked badge of the learner, oldest first.
	List(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error)

	// ListNew returns the records still flagged is_new.
	ListNew(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error)

	// Acknowledge clears is_new for badgeIDs in one statement, or for every
	// record of the learner when badgeIDs is empty. It returns the number of
	// records cleared.
	Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error)
}
