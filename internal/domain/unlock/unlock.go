// Package unlock decides which lessons and levels a learner may open.
// Every rule fails safe: missing data yields locked.
package unlock

import (
	"github.com/fluentpath/fluent-api/internal/domain"
)

// Rule constants
const (
	// LevelUnlockPercent is the completion of the prior level needed to open the next.
	LevelUnlockPercent = 80
	// ItemsPerLesson is the mastered-item count per lesson index that opens a
	// lesson before it has an explicit progress record.
	ItemsPerLesson = 2
)

// LearnerState is the snapshot the rules are evaluated against.
type LearnerState struct {
	// MasteredTotal is the learner's cumulative mastered-item count.
	MasteredTotal int
	// MasteredByLevel counts mastered items per level.
	MasteredByLevel map[domain.Level]int
	// ProfileLevel is the free-form level from the learner profile.
	ProfileLevel string
	// Lessons holds explicit lesson progress by lesson id.
	Lessons map[string]domain.LessonStatus
}

// LevelState reports a level's progress and accessibility.
type LevelState struct {
	Level      domain.Level `json:"level"`
	Unlocked   bool         `json:"unlocked"`
	Mastered   int          `json:"mastered"`
	Required   int          `json:"required"`
	Completion float64      `json:"completion"`
}

// Rules evaluates unlock rules against a level table.
type Rules struct {
	levels map[domain.Level]domain.LevelDefinition
}

// NewRules creates Rules over the given level definitions.
func NewRules(levels []domain.LevelDefinition) *Rules {
	m := make(map[domain.Level]domain.LevelDefinition, len(levels))
	for _, l := range levels {
		m[l.Level] = l
	}
	return &Rules{levels: m}
}

// Completion returns mastered/required clamped to [0, 1]. A non-positive
// requirement yields 0.
func Completion(mastered, required int) float64 {
	if required <= 0 || mastered <= 0 {
		return 0
	}
	if mastered >= required {
		return 1
	}
	return float64(mastered) / float64(required)
}

// completionReached compares in integers so the boundary is exact.
func completionReached(mastered, required int) bool {
	if required <= 0 {
		return false
	}
	return mastered*100 >= required*LevelUnlockPercent
}

// LevelUnlocked reports whether level is accessible. The lowest level is
// always open; a higher level opens when the prior level is at least 80%
// complete or the profile already names that level or a higher one.
func (r *Rules) LevelUnlocked(level domain.Level, st LearnerState) bool {
	rank := level.Rank()
	switch {
	case rank < 0:
		return false
	case rank == 0:
		return true
	}

	if pl, ok := domain.ParseLevel(st.ProfileLevel); ok && pl.Rank() >= rank {
		return true
	}

	prior := domain.OrderedLevels[rank-1]
	def, ok := r.levels[prior]
	if !ok {
		return false
	}
	return completionReached(st.MasteredByLevel[prior], def.RequiredMastered)
}

// LevelState summarises a level for the learner.
func (r *Rules) LevelState(level domain.Level, st LearnerState) LevelState {
	required := r.levels[level].RequiredMastered
	mastered := st.MasteredByLevel[level]
	return LevelState{
		Level:      level,
		Unlocked:   r.LevelUnlocked(level, st),
		Mastered:   mastered,
		Required:   required,
		Completion: Completion(mastered, required),
	}
}

// LessonUnlocked reports whether lesson is accessible.
func (r *Rules) LessonUnlocked(lesson domain.Lesson, st LearnerState) bool {
	if !r.LevelUnlocked(lesson.Level, st) {
		return false
	}
	if lesson.Index == 0 {
		return true
	}
	if status, ok := st.Lessons[lesson.ID]; ok && (status == domain.LessonUnlocked || status == domain.LessonCompleted) {
		return true
	}
	return lesson.Index > 0 && st.MasteredTotal >= ItemsPerLesson*lesson.Index
}

// LessonStatus resolves the status to show for lesson. An explicit completed
// record wins; otherwise the unlock rules decide.
func (r *Rules) LessonStatus(lesson domain.Lesson, st LearnerState) domain.LessonStatus {
	if st.Lessons[lesson.ID] == domain.LessonCompleted {
		return domain.LessonCompleted
	}
	if r.LessonUnlocked(lesson, st) {
		return domain.LessonUnlocked
	}
	return domain.LessonLocked
}

// InitialStatus is the status a lesson gets when a learner is first seen.
func InitialStatus(lesson domain.Lesson) domain.LessonStatus {
	if lesson.Level.Rank() == 0 && lesson.Index == 0 {
		return domain.LessonUnlocked
	}
	return domain.LessonLocked
}

// NextLesson returns the lesson following current in the same level.
func NextLesson(current domain.Lesson, lessons []domain.Lesson) (domain.Lesson, bool) {
	for _, l := range lessons {
		if l.Level == current.Level && l.Index == current.Index+1 {
			return l, true
		}
	}
	return domain.Lesson{}, false
}
