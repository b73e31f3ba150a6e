package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDailyGoal is the number of practiced items per day a new learner aims for.
const DefaultDailyGoal = 10

// ProfileStats is the learner profile fields the progress engine reads.
// Points is the only field the engine writes.
type ProfileStats struct {
	LearnerID   uuid.UUID `json:"learner_id"   db:"learner_id"`
	Points      int       `json:"points"       db:"points"`
	StreakCount int       `json:"streak_count" db:"streak_count"`
	Level       string    `json:"level"        db:"level"`
	DailyGoal   int       `json:"daily_goal"   db:"daily_goal"`
	PlanTier    string    `json:"plan_tier"    db:"plan_tier"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// NewProfileStats returns the profile a learner starts with.
func NewProfileStats(learnerID uuid.UUID, dailyGoal int) ProfileStats {
	if dailyGoal <= 0 {
		dailyGoal = DefaultDailyGoal
	}
	return ProfileStats{
		LearnerID: learnerID,
		Level:     string(LevelBeginner),
		DailyGoal: dailyGoal,
		PlanTier:  "free",
	}
}
