package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProgressStatus is the mastery state of a single (learner, item) pair.
type ProgressStatus string

// Possible progress status values
const (
	ProgressNotStarted   ProgressStatus = "not_started"
	ProgressLearning     ProgressStatus = "learning"
	ProgressMastered     ProgressStatus = "mastered"
	ProgressReviewNeeded ProgressStatus = "review_needed"
)

// Valid reports whether s is a known progress status.
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNotStarted, ProgressLearning, ProgressMastered, ProgressReviewNeeded:
		return true
	default:
		return false
	}
}

// Common validation errors for ProgressRecord
var (
	ErrEmptyProgressLearnerID  = errors.New("progress learner ID cannot be empty")
	ErrEmptyProgressItemID     = errors.New("progress item ID cannot be empty")
	ErrNegativeAttempts        = errors.New("attempts must be greater than or equal to 0")
	ErrCorrectExceedsAttempts  = errors.New("correct attempts must be between 0 and attempts")
	ErrMasteredAtInconsistent  = errors.New("mastered_at must be set once the item has been mastered")
	ErrMasteredAtWithoutStatus = errors.New("mastered_at cannot be set before the item was mastered")
)

// ProgressRecord tracks one learner's mastery of one content item.
// Exactly one record exists per (learner, item); attempts only increase.
type ProgressRecord struct {
	LearnerID       uuid.UUID      `json:"learner_id"        db:"learner_id"`
	ItemID          string         `json:"item_id"           db:"item_id"`
	Status          ProgressStatus `json:"status"            db:"status"`
	Attempts        int            `json:"attempts"          db:"attempts"`
	CorrectAttempts int            `json:"correct_attempts"  db:"correct_attempts"`
	LastPracticedAt *time.Time     `json:"last_practiced_at" db:"last_practiced_at"`
	MasteredAt      *time.Time     `json:"mastered_at"       db:"mastered_at"`
	CreatedAt       time.Time      `json:"created_at"        db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"        db:"updated_at"`
}

// NewProgressRecord creates an untouched record in the not_started state.
func NewProgressRecord(learnerID uuid.UUID, itemID string, now time.Time) (*ProgressRecord, error) {
	rec := &ProgressRecord{
		LearnerID: learnerID,
		ItemID:    itemID,
		Status:    ProgressNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks the record's invariants.
func (r *ProgressRecord) Validate() error {
	if r.LearnerID == uuid.Nil {
		return ErrEmptyProgressLearnerID
	}

	if strings.TrimSpace(r.ItemID) == "" {
		return ErrEmptyProgressItemID
	}

	if !r.Status.Valid() {
		return ErrInvalidStatus
	}

	if r.Attempts < 0 {
		return ErrNegativeAttempts
	}

	if r.CorrectAttempts < 0 || r.CorrectAttempts > r.Attempts {
		return ErrCorrectExceedsAttempts
	}

	// review_needed records were mastered before, so they keep mastered_at too.
	if (r.Status == ProgressMastered) && r.MasteredAt == nil {
		return ErrMasteredAtInconsistent
	}

	if (r.Status == ProgressNotStarted || r.Status == ProgressLearning) && r.MasteredAt != nil {
		return ErrMasteredAtWithoutStatus
	}

	return nil
}

// IsMastered reports whether the item has ever been mastered.
func (r *ProgressRecord) IsMastered() bool {
	return r.MasteredAt != nil
}

// Accuracy returns the share of correct attempts, 0 when never practiced.
func (r *ProgressRecord) Accuracy() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.CorrectAttempts) / float64(r.Attempts)
}
