package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is a proficiency tier grouping lessons.
type Level string

// Levels in ascending order
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// OrderedLevels lists every level from lowest to highest.
var OrderedLevels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Rank returns the zero-based position of the level, or -1 when unknown.
func (l Level) Rank() int {
	for i, lv := range OrderedLevels {
		if lv == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// ParseLevel converts a free-form profile level string into a Level.
// Unknown values report false.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}

// LessonStatus is the per-learner state of a lesson.
type LessonStatus string

// Possible lesson status values
const (
	LessonLocked    LessonStatus = "locked"
	LessonUnlocked  LessonStatus = "unlocked"
	LessonCompleted LessonStatus = "completed"
)

// Valid reports whether s is a known lesson status.
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonLocked, LessonUnlocked, LessonCompleted:
		return true
	default:
		return false
	}
}

// Item is a single practisable sentence or phrase from the content catalog.
type Item struct {
	ID          string   `json:"id"`
	LessonID    string   `json:"lesson_id"`
	Level       Level    `json:"level"`
	Text        string   `json:"text"`
	Translation string   `json:"translation"`
	AudioURL    string   `json:"audio_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Lesson is an ordered group of items inside a level.
type Lesson struct {
	ID      string   `json:"id"`
	Level   Level    `json:"level"`
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	ItemIDs []string `json:"item_ids"`
}

// LevelDefinition carries the mastery threshold a level must reach before the
// next level opens.
type LevelDefinition struct {
	Level            Level  `json:"level"`
	Title            string `json:"title"`
	RequiredMastered int    `json:"required_mastered"`
}

// Common validation errors for LessonProgressRecord
var (
	ErrEmptyLessonLearnerID = errors.New("lesson progress learner ID cannot be empty")
	ErrEmptyLessonID        = errors.New("lesson ID cannot be empty")
	ErrCompletedAtMissing   = errors.New("completed lessons must carry completed_at")
)

// LessonProgressRecord is a learner's explicit state for one lesson.
type LessonProgressRecord struct {
	LearnerID   uuid.UUID    `json:"learner_id"   db:"learner_id"`
	LessonID    string       `json:"lesson_id"    db:"lesson_id"`
	Status      LessonStatus `json:"status"       db:"status"`
	CompletedAt *time.Time   `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"   db:"updated_at"`
}

// Validate checks the record's invariants.
func (r *LessonProgressRecord) Validate() error {
	if r.LearnerID == uuid.Nil {
		return ErrEmptyLessonLearnerID
	}

	if strings.TrimSpace(r.LessonID) == "" {
		return ErrEmptyLessonID
	}

	if !r.Status.Valid() {
		return ErrInvalidStatus
	}

	if r.Status == LessonCompleted && r.CompletedAt == nil {
		return ErrCompletedAtMissing
	}

	return nil
}

// Accessible reports whether the record grants access to the lesson.
func (r *LessonProgressRecord) Accessible() bool {
	return r.Status == LessonUnlocked || r.Status == LessonCompleted
}
