package exercise

import (
	"math/rand/v2"
	"strings"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// DistractorCount is the number of wrong options offered in multiple choice.
const DistractorCount = 3

// Build creates the renderable exercise of the given variant for item.
// sameLevel supplies the candidate distractors for multiple choice and may
// include item itself.
func Build(item domain.Item, variant Variant, sameLevel []domain.Item, rng *rand.Rand) (Exercise, error) {
	if !variant.Valid() {
		return Exercise{}, domain.NewValidationError("variant", "is not a supported exercise variant", nil)
	}
	if strings.TrimSpace(item.Text) == "" {
		return Exercise{}, domain.NewValidationError("text", "item has no target text", nil)
	}

	ex := Exercise{
		ItemID:  item.ID,
		Variant: variant,
		Prompt:  item.Translation,
		Target:  item.Text,
	}

	switch variant {
	case MultipleChoice:
		pool := make([]string, 0, len(sameLevel))
		for _, other := range sameLevel {
			if other.ID != item.ID {
				pool = append(pool, other.Text)
			}
		}
		ex.Options = BuildMultipleChoice(item.Text, pool, rng)
	case WordOrder:
		ex.WordPool = BuildWordPool(item.Text, rng)
	case Listening:
		ex.Prompt = item.AudioURL
	case Pronunciation:
		ex.Prompt = item.Text
	}

	return ex, nil
}

// BuildMultipleChoice samples up to DistractorCount distinct distractors from
// pool and returns them shuffled together with correct.
func BuildMultipleChoice(correct string, pool []string, rng *rand.Rand) []string {
	seen := map[string]struct{}{correct: {}}
	candidates := make([]string, 0, len(pool))
	for _, p := range pool {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		candidates = append(candidates, p)
	}

	shuffle(rng, candidates)
	if len(candidates) > DistractorCount {
		candidates = candidates[:DistractorCount]
	}

	options := append(candidates, correct)
	shuffle(rng, options)
	return options
}

// BuildWordPool returns the whitespace-separated words of target in random order.
func BuildWordPool(target string, rng *rand.Rand) []string {
	words := strings.Fields(target)
	shuffle(rng, words)
	return words
}

func shuffle(rng *rand.Rand, s []string) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if rng == nil {
		rand.Shuffle(len(s), swap)
		return
	}
	rng.Shuffle(len(s), swap)
}
