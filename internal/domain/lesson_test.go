package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLevelRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, LevelBeginner.Rank())
	assert.Equal(t, 1, LevelIntermediate.Rank())
	assert.Equal(t, 2, LevelAdvanced.Rank())
	assert.Equal(t, -1, Level("expert").Rank())
	assert.False(t, Level("").Valid())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"beginner", LevelBeginner, true},
		{" Intermediate ", LevelIntermediate, true},
		{"ADVANCED", LevelAdvanced, true},
		{"native", Level("native"), false},
		{"", Level(""), false},
	}

	for _, tc := range tests {
		got, ok := ParseLevel(tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestLessonProgressRecordValidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rec := LessonProgressRecord{LearnerID: uuid.New(), LessonID: "b-1", Status: LessonUnlocked}
	assert.NoError(t, rec.Validate())
	assert.True(t, rec.Accessible())

	rec.Status = LessonCompleted
	assert.ErrorIs(t, rec.Validate(), ErrCompletedAtMissing)
	rec.CompletedAt = &now
	assert.NoError(t, rec.Validate())
	assert.True(t, rec.Accessible())

	rec.Status = LessonLocked
	assert.False(t, rec.Accessible())

	rec.Status = "archived"
	assert.ErrorIs(t, rec.Validate(), ErrInvalidStatus)

	rec = LessonProgressRecord{LearnerID: uuid.New(), Status: LessonLocked}
	assert.ErrorIs(t, rec.Validate(), ErrEmptyLessonID)
}

func TestDailyActivityRecord(t *testing.T) {
	t.Parallel()

	rec := DailyActivityRecord{
		LearnerID:      uuid.New(),
		Date:           time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		PracticedCount: 10,
		MasteredCount:  2,
		PointsEarned:   120,
	}
	assert.NoError(t, rec.Validate())
	assert.True(t, rec.GoalMet(10))
	assert.False(t, rec.GoalMet(11))

	rec.MasteredCount = 11
	assert.ErrorIs(t, rec.Validate(), ErrMasteredExceedsPracticed)
}

func TestCalendarDate(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2026, 5, 1, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), CalendarDate(instant, time.UTC))
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), CalendarDate(instant, tokyo))
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), CalendarDate(instant, nil))
}
