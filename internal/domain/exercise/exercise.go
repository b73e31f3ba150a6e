// Package exercise scores learner answers for each exercise variant and builds
// the renderable form of an exercise from a catalog item.
package exercise

import (
	"fmt"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// Variant identifies an exercise type. Each variant has its own correctness rule.
type Variant string

// Supported exercise variants
const (
	Translation    Variant = "translation"
	MultipleChoice Variant = "multiple_choice"
	WordOrder      Variant = "word_order"
	Listening      Variant = "listening"
	Pronunciation  Variant = "pronunciation"
)

// Variants lists every supported variant.
var Variants = []Variant{Translation, MultipleChoice, WordOrder, Listening, Pronunciation}

// Valid reports whether v is a supported variant.
func (v Variant) Valid() bool {
	switch v {
	case Translation, MultipleChoice, WordOrder, Listening, Pronunciation:
		return true
	default:
		return false
	}
}

// ParseVariant converts s into a Variant, returning a ValidationError when unknown.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Valid() {
		return "", domain.NewValidationError("variant", fmt.Sprintf("%q is not a supported exercise variant", s), nil)
	}
	return v, nil
}

// Feedback is the learner-facing grade attached to a verdict.
type Feedback string

// Feedback values. Pronunciation uses the graded tiers, every other variant
// uses correct/incorrect.
const (
	FeedbackCorrect        Feedback = "correct"
	FeedbackIncorrect      Feedback = "incorrect"
	FeedbackExcellent      Feedback = "excellent"
	FeedbackGood           Feedback = "good"
	FeedbackKeepPracticing Feedback = "keep_practicing"
	FeedbackRetry          Feedback = "retry"
)

// Exercise is a renderable exercise for one catalog item.
type Exercise struct {
	ItemID  string  `json:"item_id"`
	Variant Variant `json:"variant"`
	// Prompt is what the learner is shown: the translation, the audio URL or
	// the sentence to read aloud depending on the variant.
	Prompt string `json:"prompt"`
	// Target is the expected answer. It is never sent to clients.
	Target   string   `json:"-"`
	Options  []string `json:"options,omitempty"`
	WordPool []string `json:"word_pool,omitempty"`
}

// Answer is a learner's candidate answer. Which field is read depends on the
// exercise variant.
type Answer struct {
	Text      string   `json:"text,omitempty"`
	Selection []string `json:"selection,omitempty"`
	// Transcript is the recognised speech supplied by the speech-to-text service.
	Transcript string `json:"transcript,omitempty"`
	// Confidence is the recogniser's own confidence. It is informational only.
	Confidence float64 `json:"confidence,omitempty"`
}

// Verdict is the outcome of scoring an answer. Correct and Score are always
// produced together so callers can show graded feedback on a binary result.
type Verdict struct {
	Correct  bool     `json:"correct"`
	Score    float64  `json:"score"`
	Feedback Feedback `json:"feedback"`
}

// Thresholds holds the score cut-offs used by the evaluator.
type Thresholds struct {
	Translation    float64
	Pronunciation  float64
	Excellent      float64
	KeepPracticing float64
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Translation:    0.8,
		Pronunciation:  0.7,
		Excellent:      0.9,
		KeepPracticing: 0.5,
	}
}
