// Package mastery implements the per-item mastery state machine. It is pure:
// persistence and point crediting happen in the service layer.
package mastery

import (
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// Params configures point awards.
type Params struct {
	// CorrectPoints is awarded for every correct answer.
	CorrectPoints int
	// MasteryBonus is added when an answer masters the item for the first time.
	MasteryBonus int
}

// DefaultParams returns the standard point awards.
func DefaultParams() Params {
	return Params{
		CorrectPoints: 10,
		MasteryBonus:  25,
	}
}

// Transition describes what a single answer did to a progress record.
type Transition struct {
	ItemID  string                `json:"item_id"`
	From    domain.ProgressStatus `json:"from"`
	To      domain.ProgressStatus `json:"to"`
	Correct bool                  `json:"correct"`
	// FirstMastery is true only for the answer that set mastered_at.
	FirstMastery bool `json:"first_mastery"`
	Points       int  `json:"points"`
}

// Changed reports whether the status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Apply returns the record after one answer and the transition it caused.
// rec is not modified.
//
// Transitions:
//   - not_started -> learning on any answer; a correct first answer continues
//     straight to mastered
//   - learning -> mastered on a correct answer
//   - review_needed -> mastered on a correct answer, without re-dating mastered_at
//   - mastered never regresses
func Apply(rec domain.ProgressRecord, correct bool, now time.Time, p Params) (domain.ProgressRecord, Transition) {
	next := rec
	from := rec.Status
	if from == "" {
		from = domain.ProgressNotStarted
	}

	next.Attempts++
	if correct {
		next.CorrectAttempts++
	}
	practiced := now
	next.LastPracticedAt = &practiced
	next.UpdatedAt = now

	to := from
	switch from {
	case domain.ProgressNotStarted:
		to = domain.ProgressLearning
		if correct {
			to = domain.ProgressMastered
		}
	case domain.ProgressLearning, domain.ProgressReviewNeeded:
		if correct {
			to = domain.ProgressMastered
		}
	case domain.ProgressMastered:
		// terminal
	}
	next.Status = to

	firstMastery := false
	if to == domain.ProgressMastered && rec.MasteredAt == nil {
		mastered := now
		next.MasteredAt = &mastered
		firstMastery = true
	}

	return next, Transition{
		ItemID:       rec.ItemID,
		From:         from,
		To:           to,
		Correct:      correct,
		FirstMastery: firstMastery,
		Points:       Points(correct, firstMastery, p),
	}
}

// Points returns the award for one answer.
func Points(correct, firstMastery bool, p Params) int {
	if !correct {
		return 0
	}
	points := p.CorrectPoints
	if firstMastery {
		points += p.MasteryBonus
	}
	return points
}
