// Package badge holds the static achievement catalog and the rules that match
// a learner's stat snapshot against it.
package badge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// RequirementType names the stat a badge threshold is compared against.
type RequirementType string

// Requirement types
const (
	// RequirementStreakDays compares against the profile's any-activity streak.
	RequirementStreakDays RequirementType = "streak_days"
	// RequirementSentencesMastered compares against the mastered item count.
	RequirementSentencesMastered RequirementType = "sentences_mastered"
	// RequirementDailyGoalDays compares against the daily-goal streak.
	RequirementDailyGoalDays RequirementType = "daily_goal_days"
)

// Rarity is the display tier of a badge.
type Rarity string

// Rarity tiers from lowest to highest
const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Definition is one catalog entry.
type Definition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Requirement RequirementType `json:"requirement"`
	Threshold   int             `json:"threshold"`
	Points      int             `json:"points"`
	Rarity      Rarity          `json:"rarity"`
}

// Stats is the snapshot badges are evaluated against.
type Stats struct {
	ProfileStreak int `json:"profile_streak"`
	MasteredCount int `json:"mastered_count"`
	GoalStreak    int `json:"goal_streak"`
}

// Value returns the stat a requirement type reads. Unknown types read 0.
func (s Stats) Value(req RequirementType) int {
	switch req {
	case RequirementStreakDays:
		return s.ProfileStreak
	case RequirementSentencesMastered:
		return s.MasteredCount
	case RequirementDailyGoalDays:
		return s.GoalStreak
	default:
		return 0
	}
}

// Met reports whether stats satisfy the badge's threshold.
func (d Definition) Met(stats Stats) bool {
	return d.Threshold > 0 && stats.Value(d.Requirement) >= d.Threshold
}

// Progress returns how far stats are towards the threshold, capped at 1.
func (d Definition) Progress(stats Stats) float64 {
	if d.Threshold <= 0 {
		return 0
	}
	v := stats.Value(d.Requirement)
	if v >= d.Threshold {
		return 1
	}
	return float64(v) / float64(d.Threshold)
}

// Catalog is an immutable, ordered set of badge definitions.
type Catalog struct {
	defs []Definition
	byID map[string]Definition
}

// Catalog errors
var (
	ErrInvalidCatalog = errors.New("invalid badge catalog")
	ErrDuplicateBadge = errors.New("duplicate badge id")
)

var (
	//go:embed badges.json
	catalogJSON []byte
	//go:embed badges.schema.json
	schemaJSON []byte
)

const schemaURL = "schema://badges.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse badge schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add badge schema resource: %w", err)
	}

	return c.Compile(schemaURL)
})

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(catalogJSON)
})

// Default returns the catalog embedded in the binary. It is parsed and
// validated once.
func Default() (*Catalog, error) {
	return loadDefault()
}

// MustDefault returns Default and panics when the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var file struct {
		Version int          `json:"version"`
		Badges  []Definition `json:"badges"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	return New(file.Badges)
}

// New builds a catalog from definitions, rejecting duplicate ids.
func New(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs: make([]Definition, 0, len(defs)),
		byID: make(map[string]Definition, len(defs)),
	}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBadge, d.ID)
		}
		c.byID[d.ID] = d
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// All returns every definition in catalog order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get looks a definition up by id.
func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Eligible returns the definitions met by stats that are not in unlocked.
func (c *Catalog) Eligible(stats Stats, unlocked map[string]bool) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if unlocked[d.ID] {
			continue
		}
		if d.Met(stats) {
			out = append(out, d)
		}
	}
	return out
}
