// Package plan holds subscription tiers, their usage limits and the quota
// predicates evaluated against them. Unknown tiers get free limits.
package plan

import (
	"strings"
)

// Tier is a subscription tier.
type Tier string

// Known tiers
const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

// Unlimited marks a limit without a cap.
const Unlimited = -1

// Feature names a quota-limited feature.
type Feature string

// Limited features
const (
	FeatureLessons      Feature = "lessons"
	FeatureChatMessages Feature = "chat_messages"
	FeatureSentences    Feature = "sentences"
)

// Features lists every limited feature.
var Features = []Feature{FeatureLessons, FeatureChatMessages, FeatureSentences}

// Limits are a tier's caps. Unlimited (-1) disables a cap.
type Limits struct {
	DailyLessons      int `json:"daily_lessons"`
	DailyChatMessages int `json:"daily_chat_messages"`
	TotalSentences    int `json:"total_sentences"`
}

var tierLimits = map[Tier]Limits{
	TierFree:    {DailyLessons: 3, DailyChatMessages: 10, TotalSentences: 50},
	TierPremium: {DailyLessons: 20, DailyChatMessages: 100, TotalSentences: 1000},
	TierPro:     {DailyLessons: Unlimited, DailyChatMessages: Unlimited, TotalSentences: Unlimited},
}

// ParseTier normalises s into a Tier. Unknown values map to TierFree.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierLimits[t]; ok {
		return t
	}
	return TierFree
}

// LimitsFor returns the caps of tier, falling back to free limits.
func LimitsFor(tier Tier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// Usage is the learner's current consumption.
type Usage struct {
	LessonsToday      int `json:"lessons_today"`
	ChatMessagesToday int `json:"chat_messages_today"`
	TotalSentences    int `json:"total_sentences"`
}

// Gate evaluates quota predicates for one tier and usage snapshot.
type Gate struct {
	Tier   Tier
	Limits Limits
	Usage  Usage
}

// NewGate creates a gate for tier; unknown tiers are limited like free.
func NewGate(tier Tier, usage Usage) Gate {
	tier = ParseTier(string(tier))
	return Gate{Tier: tier, Limits: LimitsFor(tier), Usage: usage}
}

func (g Gate) pair(f Feature) (used, limit int, ok bool) {
	switch f {
	case FeatureLessons:
		return g.Usage.LessonsToday, g.Limits.DailyLessons, true
	case FeatureChatMessages:
		return g.Usage.ChatMessagesToday, g.Limits.DailyChatMessages, true
	case FeatureSentences:
		return g.Usage.TotalSentences, g.Limits.TotalSentences, true
	default:
		return 0, 0, false
	}
}

// Reached reports whether usage of f has hit its cap. Unknown features are
// reported as reached.
func (g Gate) Reached(f Feature) bool {
	used, limit, ok := g.pair(f)
	if !ok {
		return true
	}
	if limit == Unlimited {
		return false
	}
	return used >= limit
}

// HasReachedLessonLimit reports whether today's lesson cap is reached.
func (g Gate) HasReachedLessonLimit() bool { return g.Reached(FeatureLessons) }

// HasReachedChatLimit reports whether today's chat message cap is reached.
func (g Gate) HasReachedChatLimit() bool { return g.Reached(FeatureChatMessages) }

// HasReachedSentenceLimit reports whether the total sentence cap is reached.
func (g Gate) HasReachedSentenceLimit() bool { return g.Reached(FeatureSentences) }

// Remaining returns how many more uses of f are allowed: Unlimited when
// uncapped, never below 0.
func (g Gate) Remaining(f Feature) int {
	used, limit, ok := g.pair(f)
	if !ok {
		return 0
	}
	if limit == Unlimited {
		return Unlimited
	}
	return max(limit-used, 0)
}

// PercentUsed returns usage of f as a percentage of its cap in [0, 100].
// Uncapped features report 0.
func (g Gate) PercentUsed(f Feature) float64 {
	used, limit, ok := g.pair(f)
	if !ok {
		return 100
	}
	if limit == Unlimited {
		return 0
	}
	if limit <= 0 {
		return 100
	}
	pct := float64(used) / float64(limit) * 100
	return min(max(pct, 0), 100)
}

// FeatureStatus is the per-feature view of a gate.
type FeatureStatus struct {
	Feature     Feature `json:"feature"`
	Used        int     `json:"used"`
	Limit       int     `json:"limit"`
	Remaining   int     `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
	Limited     bool    `json:"limited"`
}

// Status returns the view of every feature.
func (g Gate) Status() []FeatureStatus {
	out := make([]FeatureStatus, 0, len(Features))
	for _, f := range Features {
		used, limit, _ := g.pair(f)
		out = append(out, FeatureStatus{
			Feature:     f,
			Used:        used,
			Limit:       limit,
			Remaining:   g.Remaining(f),
			PercentUsed: g.PercentUsed(f),
			Limited:     g.Reached(f),
		})
	}
	return out
}
