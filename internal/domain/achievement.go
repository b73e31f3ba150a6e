package domain

import (
	"time"

	"github.com/google/uuid"
)

// AchievementRecord marks a badge unlocked by a learner. At most one record
// exists per (learner, badge).
type AchievementRecord struct {
	LearnerID  uuid.UUID `json:"learner_id"  db:"learner_id"`
	BadgeID    string    `json:"badge_id"    db:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
	IsNew      bool      `json:"is_new"      db:"is_new"`
}
