package practice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/domain/exercise"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/service"
	"github.com/fluentpath/fluent-api/internal/store"
)

const testCatalogJSON = `{
  "levels": [{"level": "beginner", "required_mastered": 4}],
  "lessons": [
    {"id": "b-0", "level": "beginner", "index": 0, "title": "Greetings",
     "items": [
       {"id": "hola", "text": "Hola", "translation": "Hello"},
       {"id": "gracias", "text": "Gracias", "translation": "Thanks"},
       {"id": "buenas", "text": "Buenas noches", "translation": "Good night"},
       {"id": "adios", "text": "Adiós", "translation": "Goodbye"}
     ]}
  ]
}`

type deps struct {
	profiles     *MockProfileStore
	mastery      *MockMasteryTracker
	activity     *MockActivityAggregator
	lessons      *MockLessonGate
	achievements *MockAchievementEvaluator
	plans        *MockPlanGate
}

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*practiceService, deps) {
	t.Helper()

	c, err := catalog.Parse([]byte(testCatalogJSON))
	require.NoError(t, err)

	d := deps{
		profiles:     &MockProfileStore{},
		mastery:      &MockMasteryTracker{},
		activity:     &MockActivityAggregator{},
		lessons:      &MockLessonGate{},
		achievements: &MockAchievementEvaluator{},
		plans:        &MockPlanGate{},
	}
	svc, err := NewService(Deps{
		Catalog:          c,
		Profiles:         d.profiles,
		Mastery:          d.mastery,
		Activity:         d.activity,
		Lessons:          d.lessons,
		Achievements:     d.achievements,
		Plans:            d.plans,
		DefaultDailyGoal: 10,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	s := svc.(*practiceService)
	s.now = func() time.Time { return testNow }
	s.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }
	return s, d
}

// allow stubs the access checks so every item is open to the learner.
func (d deps) allow(learnerID uuid.UUID) {
	d.lessons.On("LessonStatus", mock.Anything, learnerID, mock.Anything).
		Return(&service.LessonView{Status: domain.LessonUnlocked}, nil)
	d.mastery.On("Progress", mock.Anything, learnerID, mock.Anything).
		Return(&domain.ProgressRecord{LearnerID: learnerID, Status: domain.ProgressLearning, Attempts: 1}, nil)
}

func masteredResult(learnerID uuid.UUID, itemID string, first bool, points int) *service.MasteryResult {
	mastered := testNow
	return &service.MasteryResult{
		Record: domain.ProgressRecord{
			LearnerID: learnerID, ItemID: itemID, Status: domain.ProgressMastered,
			Attempts: 1, CorrectAttempts: 1, MasteredAt: &mastered,
		},
		Transition: mastery.Transition{
			ItemID: itemID, From: domain.ProgressNotStarted, To: domain.ProgressMastered,
			Correct: true, FirstMastery: first, Points: points,
		},
	}
}

func TestNewService_NilDependencies(t *testing.T) {
	_, err := NewService(Deps{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitAnswer_FullFlow(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	s, d := newTestService(t)

	result := masteredResult(learnerID, "hola", true, 35)
	completion := &service.LessonCompletion{
		Lesson:    service.LessonView{Status: domain.LessonCompleted},
		Completed: true,
	}
	badges := []badge.Definition{{ID: "first_words", Name: "First Words", Points: 5}}

	d.allow(learnerID)
	d.profiles.On("EnsureExists", ctx, domain.NewProfileStats(learnerID, 10)).Return(true, nil)
	d.lessons.On("InitializeLearner", ctx, learnerID).Return(1, nil)
	d.mastery.On("RecordAnswer", ctx, learnerID, "hola", true, testNow).Return(result, nil)
	d.activity.On("Record", ctx, learnerID, result.Transition, testNow).Return(&domain.DailyActivityRecord{}, nil)
	d.profiles.On("AddPoints", ctx, learnerID, 35).Return(nil)
	d.lessons.On("CompleteIfMastered", ctx, learnerID, "hola", testNow).Return(completion, nil)
	d.achievements.On("Evaluate", ctx, learnerID).Return(badges, nil)

	out, err := s.SubmitAnswer(ctx, learnerID, SubmitRequest{
		ItemID:  "hola",
		Variant: exercise.Translation,
		Answer:  exercise.Answer{Text: "hola!"},
	})
	require.NoError(t, err)

	assert.True(t, out.Verdict.Correct)
	assert.True(t, out.Saved)
	assert.Empty(t, out.Warning)
	assert.Equal(t, 35, out.Points)
	assert.True(t, out.Mastered)
	assert.Same(t, completion, out.LessonCompleted)
	assert.Equal(t, badges, out.NewBadges)
	require.NotNil(t, out.Progress)
	assert.Equal(t, domain.ProgressMastered, out.Progress.Status)

	d.profiles.AssertExpectations(t)
	d.lessons.AssertExpectations(t)
	d.mastery.AssertExpectations(t)
	d.activity.AssertExpectations(t)
	d.achievements.AssertExpectations(t)
}

func TestSubmitAnswer_IncorrectAnswerSkipsPointsAndLesson(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	s, d := newTestService(t)

	result := &service.MasteryResult{
		Record:     domain.ProgressRecord{LearnerID: learnerID, ItemID: "gracias", Status: domain.ProgressLearning, Attempts: 1},
		Transition: mastery.Transition{ItemID: "gracias", From: domain.ProgressNotStarted, To: domain.ProgressLearning},
	}

	d.allow(learnerID)
	d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
	d.mastery.On("RecordAnswer", ctx, learnerID, "gracias", false, testNow).Return(result, nil)
	d.activity.On("Record", ctx, learnerID, result.Transition, testNow).Return(&domain.DailyActivityRecord{}, nil)
	d.achievements.On("Evaluate", ctx, learnerID).Return(nil, nil)

	out, err := s.SubmitAnswer(ctx, learnerID, SubmitRequest{
		ItemID:  "gracias",
		Variant: exercise.MultipleChoice,
		Answer:  exercise.Answer{Text: "Hola"},
		Options: []string{"Hola", "Gracias", "Adiós"},
	})
	require.NoError(t, err)

	assert.False(t, out.Verdict.Correct)
	assert.True(t, out.Saved)
	assert.Zero(t, out.Points)
	assert.Empty(t, out.NewBadges)
	d.profiles.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)
	d.lessons.AssertNotCalled(t, "InitializeLearner", mock.Anything, mock.Anything)
	d.lessons.AssertNotCalled(t, "CompleteIfMastered", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAnswer_RejectedBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()

	tests := []struct {
		name    string
		req     SubmitRequest
		wantErr error
	}{
		{
			name:    "unknown item",
			req:     SubmitRequest{ItemID: "nope", Variant: exercise.Translation, Answer: exercise.Answer{Text: "x"}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "unknown variant",
			req:     SubmitRequest{ItemID: "hola", Variant: "essay", Answer: exercise.Answer{Text: "x"}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty answer",
			req:     SubmitRequest{ItemID: "hola", Variant: exercise.Translation, Answer: exercise.Answer{Text: "  "}},
			wantErr: domain.ErrValidation,
		},
		{
			name: "choice outside the offered options",
			req: SubmitRequest{
				ItemID: "hola", Variant: exercise.MultipleChoice,
				Answer: exercise.Answer{Text: "Hola"}, Options: []string{"Gracias", "Adiós"},
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, d := newTestService(t)

			out, err := s.SubmitAnswer(ctx, learnerID, tc.req)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tc.wantErr)
			d.profiles.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything)
			d.mastery.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitAnswer_RefusedWhereExerciseIsRefused(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	req := SubmitRequest{ItemID: "hola", Variant: exercise.Translation, Answer: exercise.Answer{Text: "hola"}}
	notStarted := &domain.ProgressRecord{LearnerID: learnerID, ItemID: "hola", Status: domain.ProgressNotStarted}

	t.Run("locked lesson", func(t *testing.T) {
		s, d := newTestService(t)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").
			Return(&service.LessonView{Lesson: domain.Lesson{ID: "b-0"}, Status: domain.LessonLocked}, nil)

		out, err := s.SubmitAnswer(ctx, learnerID, req)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, service.ErrLessonLocked)
		d.mastery.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new sentence beyond the plan", func(t *testing.T) {
		s, d := newTestService(t)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").
			Return(&service.LessonView{Lesson: domain.Lesson{ID: "b-0"}, Status: domain.LessonUnlocked}, nil)
		d.mastery.On("Progress", ctx, learnerID, "hola").Return(notStarted, nil)
		d.plans.On("Check", ctx, learnerID, plan.FeatureSentences).
			Return(service.NewServiceError("check_plan", "limit reached", service.ErrPlanLimitReached))

		out, err := s.SubmitAnswer(ctx, learnerID, req)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, service.ErrPlanLimitReached)
		d.mastery.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("access check failure", func(t *testing.T) {
		s, d := newTestService(t)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").Return(nil, store.ErrTransactionFailed)

		out, err := s.SubmitAnswer(ctx, learnerID, req)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
		d.mastery.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmitAnswer_PersistenceFailures(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	req := SubmitRequest{ItemID: "hola", Variant: exercise.Pronunciation, Answer: exercise.Answer{Transcript: "hola"}}
	storeErr := store.ErrTransactionFailed

	t.Run("mastery step", func(t *testing.T) {
		s, d := newTestService(t)
		d.allow(learnerID)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.mastery.On("RecordAnswer", ctx, learnerID, "hola", true, testNow).
			Return(nil, domain.NewPersistenceError("progress", storeErr))

		out, err := s.SubmitAnswer(ctx, learnerID, req)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "progress", perr.Step)
		require.NotNil(t, out)
		assert.True(t, out.Verdict.Correct, "verdict survives the failed write")
		assert.False(t, out.Saved)
		assert.Equal(t, SaveWarning, out.Warning)
		assert.Nil(t, out.Progress)
		d.activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("activity step", func(t *testing.T) {
		s, d := newTestService(t)
		result := masteredResult(learnerID, "hola", true, 35)
		d.allow(learnerID)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.mastery.On("RecordAnswer", ctx, learnerID, "hola", true, testNow).Return(result, nil)
		d.activity.On("Record", ctx, learnerID, result.Transition, testNow).
			Return(nil, domain.NewPersistenceError("daily_activity", storeErr))

		out, err := s.SubmitAnswer(ctx, learnerID, req)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "daily_activity", perr.Step)
		assert.False(t, out.Saved)
		assert.NotNil(t, out.Progress, "progress step already completed")
		d.profiles.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("points step", func(t *testing.T) {
		s, d := newTestService(t)
		result := masteredResult(learnerID, "hola", true, 35)
		d.allow(learnerID)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.mastery.On("RecordAnswer", ctx, learnerID, "hola", true, testNow).Return(result, nil)
		d.activity.On("Record", ctx, learnerID, result.Transition, testNow).Return(&domain.DailyActivityRecord{}, nil)
		d.profiles.On("AddPoints", ctx, learnerID, 35).Return(store.ErrProfileNotFound)

		_, err := s.SubmitAnswer(ctx, learnerID, req)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "points", perr.Step)
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
	})

	t.Run("achievement step keeps unlocked badges", func(t *testing.T) {
		s, d := newTestService(t)
		result := masteredResult(learnerID, "hola", false, 10)
		badges := []badge.Definition{{ID: "first_words"}}
		d.allow(learnerID)
		d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, nil)
		d.mastery.On("RecordAnswer", ctx, learnerID, "hola", true, testNow).Return(result, nil)
		d.activity.On("Record", ctx, learnerID, result.Transition, testNow).Return(&domain.DailyActivityRecord{}, nil)
		d.profiles.On("AddPoints", ctx, learnerID, 10).Return(nil)
		d.achievements.On("Evaluate", ctx, learnerID).Return(badges, errors.New("points credit failed"))

		out, err := s.SubmitAnswer(ctx, learnerID, req)

		var perr *domain.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "achievements", perr.Step)
		assert.Equal(t, badges, out.NewBadges)
		d.lessons.AssertNotCalled(t, "CompleteIfMastered", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmitAnswer_ProfileSetupFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	s, d := newTestService(t)

	result := &service.MasteryResult{
		Record:     domain.ProgressRecord{LearnerID: learnerID, ItemID: "hola", Status: domain.ProgressLearning, Attempts: 1},
		Transition: mastery.Transition{ItemID: "hola", From: domain.ProgressNotStarted, To: domain.ProgressLearning},
	}
	d.allow(learnerID)
	d.profiles.On("EnsureExists", ctx, mock.Anything).Return(false, errors.New("timeout"))
	d.mastery.On("RecordAnswer", ctx, learnerID, "hola", false, testNow).Return(result, nil)
	d.activity.On("Record", ctx, learnerID, result.Transition, testNow).Return(&domain.DailyActivityRecord{}, nil)
	d.achievements.On("Evaluate", ctx, learnerID).Return(nil, nil)

	out, err := s.SubmitAnswer(ctx, learnerID, SubmitRequest{
		ItemID: "hola", Variant: exercise.WordOrder, Answer: exercise.Answer{Selection: []string{"Adiós"}},
	})
	require.NoError(t, err)
	assert.True(t, out.Saved)
}

func TestGetExercise(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()

	unlockedLesson := &service.LessonView{Lesson: domain.Lesson{ID: "b-0"}, Status: domain.LessonUnlocked}
	notStarted := &domain.ProgressRecord{LearnerID: learnerID, ItemID: "hola", Status: domain.ProgressNotStarted}
	learning := &domain.ProgressRecord{LearnerID: learnerID, ItemID: "hola", Status: domain.ProgressLearning, Attempts: 1}

	t.Run("multiple choice offers distractors from the level", func(t *testing.T) {
		s, d := newTestService(t)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").Return(unlockedLesson, nil)
		d.mastery.On("Progress", ctx, learnerID, "hola").Return(notStarted, nil)
		d.plans.On("Check", ctx, learnerID, plan.FeatureSentences).Return(nil)

		ex, err := s.GetExercise(ctx, learnerID, "hola", exercise.MultipleChoice)
		require.NoError(t, err)
		assert.Equal(t, "Hello", ex.Prompt)
		assert.Len(t, ex.Options, 4)
		assert.Contains(t, ex.Options, "Hola")
	})

	t.Run("started items skip the sentence quota", func(t *testing.T) {
		s, d := newTestService(t)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").Return(unlockedLesson, nil)
		d.mastery.On("Progress", ctx, learnerID, "hola").Return(learning, nil)

		ex, err := s.GetExercise(ctx, learnerID, "hola", exercise.WordOrder)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Hola"}, ex.WordPool)
		d.plans.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new sentence over the plan limit", func(t *testing.T) {
		s, d := newTestService(t)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").Return(unlockedLesson, nil)
		d.mastery.On("Progress", ctx, learnerID, "hola").Return(notStarted, nil)
		d.plans.On("Check", ctx, learnerID, plan.FeatureSentences).
			Return(service.NewServiceError("check_plan", "sentences limit reached", service.ErrPlanLimitReached))

		_, err := s.GetExercise(ctx, learnerID, "hola", exercise.Translation)
		assert.ErrorIs(t, err, service.ErrPlanLimitReached)
	})

	t.Run("locked lesson", func(t *testing.T) {
		s, d := newTestService(t)
		d.lessons.On("LessonStatus", ctx, learnerID, "b-0").
			Return(&service.LessonView{Lesson: domain.Lesson{ID: "b-0"}, Status: domain.LessonLocked}, nil)

		_, err := s.GetExercise(ctx, learnerID, "hola", exercise.Translation)
		assert.ErrorIs(t, err, service.ErrLessonLocked)
	})

	t.Run("invalid variant", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.GetExercise(ctx, learnerID, "hola", "essay")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown item", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.GetExercise(ctx, learnerID, "nope", exercise.Translation)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
