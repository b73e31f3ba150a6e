// Package activity computes daily rollup deltas and the daily-goal streak.
package activity

import (
	"slices"
	"time"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
)

// Delta is the increment one answer applies to today's rollup.
type Delta struct {
	Practiced int
	Mastered  int
	Points    int
}

// DeltaFor returns the rollup increment for a mastery transition. The mastered
// counter moves only on the answer that first mastered the item.
func DeltaFor(tr mastery.Transition) Delta {
	d := Delta{Practiced: 1, Points: tr.Points}
	if tr.FirstMastery {
		d.Mastered = 1
	}
	return d
}

// GoalStreak counts consecutive calendar days on which the daily goal was
// met, walking records newest first. today is a calendar date as produced by
// domain.CalendarDate.
//
// The walk starts at today's record, or at yesterday's when nothing has been
// recorded today yet, and stops at the first missing day or unmet goal. A
// recorded but unmet today therefore yields 0.
func GoalStreak(records []domain.DailyActivityRecord, dailyGoal int, today time.Time) int {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b domain.DailyActivityRecord) int {
		return b.Date.Compare(a.Date)
	})

	i := 0
	for i < len(sorted) && sorted[i].Date.After(today) {
		i++
	}

	expected := today
	if i < len(sorted) && !sorted[i].Date.Equal(today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for ; i < len(sorted); i++ {
		if !sorted[i].Date.Equal(expected) || !sorted[i].GoalMet(dailyGoal) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}

// Summary aggregates a range of daily records.
type Summary struct {
	Days           int `json:"days"`
	ActiveDays     int `json:"active_days"`
	GoalDays       int `json:"goal_days"`
	PracticedCount int `json:"practiced_count"`
	MasteredCount  int `json:"mastered_count"`
	PointsEarned   int `json:"points_earned"`
}

// Summarize totals records over a window of days.
func Summarize(records []domain.DailyActivityRecord, dailyGoal, days int) Summary {
	s := Summary{Days: days}
	for i := range records {
		rec := &records[i]
		if rec.PracticedCount > 0 {
			s.ActiveDays++
		}
		if rec.GoalMet(dailyGoal) {
			s.GoalDays++
		}
		s.PracticedCount += rec.PracticedCount
		s.MasteredCount += rec.MasteredCount
		s.PointsEarned += rec.PointsEarned
	}
	return s
}
