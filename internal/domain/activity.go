package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for activity dates on the wire.
const DateLayout = "2006-01-02"

// Common validation errors for DailyActivityRecord
var (
	ErrEmptyActivityLearnerID   = errors.New("activity learner ID cannot be empty")
	ErrEmptyActivityDate        = errors.New("activity date cannot be empty")
	ErrNegativeActivityCount    = errors.New("activity counters must be greater than or equal to 0")
	ErrMasteredExceedsPracticed = errors.New("mastered count cannot exceed practiced count")
)

// DailyActivityRecord is the per-learner rollup of one calendar day.
// Date is truncated to midnight UTC of the learner's calendar day.
type DailyActivityRecord struct {
	LearnerID      uuid.UUID `json:"learner_id"      db:"learner_id"`
	Date           time.Time `json:"date"            db:"activity_date"`
	PracticedCount int       `json:"practiced_count" db:"practiced_count"`
	MasteredCount  int       `json:"mastered_count"  db:"mastered_count"`
	PointsEarned   int       `json:"points_earned"   db:"points_earned"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"      db:"updated_at"`
}

// Validate checks the record's invariants.
func (r *DailyActivityRecord) Validate() error {
	if r.LearnerID == uuid.Nil {
		return ErrEmptyActivityLearnerID
	}

	if r.Date.IsZero() {
		return ErrEmptyActivityDate
	}

	if r.PracticedCount < 0 || r.MasteredCount < 0 || r.PointsEarned < 0 {
		return ErrNegativeActivityCount
	}

	if r.MasteredCount > r.PracticedCount {
		return ErrMasteredExceedsPracticed
	}

	return nil
}

// GoalMet reports whether the day reached the given daily goal.
// The flag is derived at read time so a changed goal applies to history too.
func (r *DailyActivityRecord) GoalMet(dailyGoal int) bool {
	if dailyGoal <= 0 {
		return r.PracticedCount > 0
	}
	return r.PracticedCount >= dailyGoal
}

// CalendarDate returns midnight UTC of the calendar day t falls on in loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
