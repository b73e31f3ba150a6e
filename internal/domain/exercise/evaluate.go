package exercise

import (
	"slices"
	"strings"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/similarity"
)

// Evaluator scores answers against exercises.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an Evaluator using the given thresholds.
func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// NewDefaultEvaluator creates an Evaluator with DefaultThresholds.
func NewDefaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultThresholds())
}

// Evaluate scores ans against ex with the default thresholds.
func Evaluate(ex Exercise, ans Answer) (Verdict, error) {
	return NewDefaultEvaluator().Evaluate(ex, ans)
}

// Evaluate validates ans and scores it with the rule of ex.Variant.
// A *domain.ValidationError is returned for unknown variants and for empty or
// malformed answers; nothing is scored in that case.
func (e *Evaluator) Evaluate(ex Exercise, ans Answer) (Verdict, error) {
	switch ex.Variant {
	case Translation:
		return e.translation(ex, ans)
	case MultipleChoice:
		return e.multipleChoice(ex, ans)
	case WordOrder:
		return e.wordOrder(ex, ans)
	case Listening:
		return e.listening(ex, ans)
	case Pronunciation:
		return e.pronunciation(ex, ans)
	default:
		return Verdict{}, domain.NewValidationError("variant", "is not a supported exercise variant", nil)
	}
}

func (e *Evaluator) translation(ex Exercise, ans Answer) (Verdict, error) {
	user := similarity.Normalize(ans.Text)
	if user == "" {
		return Verdict{}, domain.NewValidationError("text", "cannot be empty", nil)
	}

	score := similarity.EditSimilarity(user, similarity.Normalize(ex.Target))
	return binary(score >= e.thresholds.Translation, score), nil
}

func (e *Evaluator) multipleChoice(ex Exercise, ans Answer) (Verdict, error) {
	if strings.TrimSpace(ans.Text) == "" {
		return Verdict{}, domain.NewValidationError("text", "a choice must be selected", nil)
	}

	if len(ex.Options) > 0 && !slices.Contains(ex.Options, ans.Text) {
		return Verdict{}, domain.NewValidationError("text", "is not one of the offered options", nil)
	}

	if ans.Text == ex.Target {
		return binary(true, 1), nil
	}
	return binary(false, 0), nil
}

func (e *Evaluator) wordOrder(ex Exercise, ans Answer) (Verdict, error) {
	selection := make([]string, 0, len(ans.Selection))
	for _, w := range ans.Selection {
		if w = strings.TrimSpace(w); w != "" {
			selection = append(selection, w)
		}
	}
	if len(selection) == 0 {
		return Verdict{}, domain.NewValidationError("selection", "cannot be empty", nil)
	}

	target := strings.Fields(ex.Target)
	correct := strings.EqualFold(strings.Join(selection, " "), strings.Join(target, " "))

	// Score is the share of positions holding the right word; it only grades
	// feedback, correctness stays exact.
	placed := 0
	for i := 0; i < len(selection) && i < len(target); i++ {
		if strings.EqualFold(selection[i], target[i]) {
			placed++
		}
	}
	score := 0.0
	if n := max(len(selection), len(target)); n > 0 {
		score = float64(placed) / float64(n)
	}

	return binary(correct, score), nil
}

func (e *Evaluator) listening(ex Exercise, ans Answer) (Verdict, error) {
	user := similarity.Normalize(ans.Text)
	if user == "" {
		return Verdict{}, domain.NewValidationError("text", "cannot be empty", nil)
	}

	target := similarity.Normalize(ex.Target)
	return binary(user == target, similarity.EditSimilarity(user, target)), nil
}

func (e *Evaluator) pronunciation(ex Exercise, ans Answer) (Verdict, error) {
	if len(similarity.Tokens(ans.Transcript)) == 0 {
		return Verdict{}, domain.NewValidationError("transcript", "cannot be empty", nil)
	}

	score := similarity.TokenOverlap(ex.Target, ans.Transcript)
	return Verdict{
		Correct:  score >= e.thresholds.Pronunciation,
		Score:    score,
		Feedback: e.pronunciationFeedback(score),
	}, nil
}

func (e *Evaluator) pronunciationFeedback(score float64) Feedback {
	switch {
	case score >= e.thresholds.Excellent:
		return FeedbackExcellent
	case score >= e.thresholds.Pronunciation:
		return FeedbackGood
	case score >= e.thresholds.KeepPracticing:
		return FeedbackKeepPracticing
	default:
		return FeedbackRetry
	}
}

func binary(correct bool, score float64) Verdict {
	fb := FeedbackIncorrect
	if correct {
		fb = FeedbackCorrect
	}
	return Verdict{Correct: correct, Score: score, Feedback: fb}
}
