package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/store"
)

type planGateMocks struct {
	profiles *MockProfileStore
	lessons  *MockLessonStore
	progress *MockProgressStore
	counter  *MockUsageCounter
}

func newTestPlanGate(t *testing.T, loc *time.Location, now time.Time) (*planGate, planGateMocks) {
	t.Helper()
	m := planGateMocks{
		profiles: &MockProfileStore{},
		lessons:  &MockLessonStore{},
		progress: &MockProgressStore{},
		counter:  &MockUsageCounter{},
	}
	svc, err := NewPlanGate(m.profiles, m.lessons, m.progress, m.counter, loc, testLogger())
	require.NoError(t, err)
	gate := svc.(*planGate)
	gate.now = fixedClock(now)
	return gate, m
}

func (m planGateMocks) expectTier(learnerID uuid.UUID, tier string) {
	if tier == "" {
		m.profiles.On("Get", mock.Anything, learnerID).Return(nil, store.ErrProfileNotFound)
		return
	}
	m.profiles.On("Get", mock.Anything, learnerID).Return(&domain.ProfileStats{LearnerID: learnerID, PlanTier: tier}, nil)
}

func TestNewPlanGate_NilDependencies(t *testing.T) {
	_, err := NewPlanGate(nil, &MockLessonStore{}, &MockProgressStore{}, &MockUsageCounter{}, time.UTC, testLogger())
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewPlanGate(&MockProfileStore{}, &MockLessonStore{}, &MockProgressStore{}, nil, time.UTC, testLogger())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanGate_Status(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC on the 15th is still the 14th in New York.
	now := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, newYork)

	gate, m := newTestPlanGate(t, newYork, now)
	m.expectTier(learnerID, "free")
	m.lessons.On("CountCompletedBetween", ctx, learnerID, dayStart, dayStart.AddDate(0, 0, 1)).Return(3, nil)
	m.counter.On("Count", ctx, learnerID, "chat_messages", day(2026, 3, 14)).Return(4, nil)
	m.progress.On("CountMastered", ctx, learnerID).Return(50, nil)

	status, err := gate.Status(ctx, learnerID)
	require.NoError(t, err)

	assert.Equal(t, plan.TierFree, status.Tier)
	assert.Equal(t, plan.Usage{LessonsToday: 3, ChatMessagesToday: 4, TotalSentences: 50}, status.Usage)
	require.Len(t, status.Features, 3)

	byFeature := map[plan.Feature]plan.FeatureStatus{}
	for _, f := range status.Features {
		byFeature[f.Feature] = f
	}
	assert.True(t, byFeature[plan.FeatureLessons].Limited)
	assert.Equal(t, 6, byFeature[plan.FeatureChatMessages].Remaining)
	assert.InDelta(t, 40.0, byFeature[plan.FeatureChatMessages].PercentUsed, 1e-9)
	assert.True(t, byFeature[plan.FeatureSentences].Limited)
	m.lessons.AssertExpectations(t)
	m.counter.AssertExpectations(t)
}

func TestPlanGate_Check(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		tier      string
		mastered  int
		wantLimit bool
	}{
		{name: "free under limit", tier: "free", mastered: 49},
		{name: "free at limit", tier: "free", mastered: 50, wantLimit: true},
		{name: "premium above free limit", tier: "premium", mastered: 50},
		{name: "pro is unlimited", tier: "pro", mastered: 100000},
		{name: "unknown tier is free", tier: "platinum", mastered: 50, wantLimit: true},
		{name: "no profile is free", tier: "", mastered: 50, wantLimit: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gate, m := newTestPlanGate(t, time.UTC, now)
			m.expectTier(learnerID, tc.tier)
			m.lessons.On("CountCompletedBetween", ctx, learnerID, mock.Anything, mock.Anything).Return(0, nil)
			m.counter.On("Count", ctx, learnerID, "chat_messages", mock.Anything).Return(0, nil)
			m.progress.On("CountMastered", ctx, learnerID).Return(tc.mastered, nil)

			err := gate.Check(ctx, learnerID, plan.FeatureSentences)
			if tc.wantLimit {
				assert.ErrorIs(t, err, ErrPlanLimitReached)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanGate_RecordChatMessage(t *testing.T) {
	ctx := context.Background()
	learnerID := uuid.New()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("counted within limit", func(t *testing.T) {
		gate, m := newTestPlanGate(t, time.UTC, now)
		m.expectTier(learnerID, "free")
		m.counter.On("IncrementWithin", ctx, learnerID, "chat_messages", day(2026, 3, 14), 10).Return(7, true, nil)

		status, err := gate.RecordChatMessage(ctx, learnerID)
		require.NoError(t, err)
		assert.Equal(t, 7, status.Used)
		assert.Equal(t, 3, status.Remaining)
		assert.False(t, status.Limited)
	})

	t.Run("rejected at limit", func(t *testing.T) {
		gate, m := newTestPlanGate(t, time.UTC, now)
		m.expectTier(learnerID, "free")
		m.counter.On("IncrementWithin", ctx, learnerID, "chat_messages", day(2026, 3, 14), 10).Return(10, false, nil)

		status, err := gate.RecordChatMessage(ctx, learnerID)
		assert.ErrorIs(t, err, ErrPlanLimitReached)
		require.NotNil(t, status)
		assert.Equal(t, 0, status.Remaining)
		assert.True(t, status.Limited)
	})

	t.Run("pro passes unlimited to the counter", func(t *testing.T) {
		gate, m := newTestPlanGate(t, time.UTC, now)
		m.expectTier(learnerID, "pro")
		m.counter.On("IncrementWithin", ctx, learnerID, "chat_messages", day(2026, 3, 14), plan.Unlimited).Return(250, true, nil)

		status, err := gate.RecordChatMessage(ctx, learnerID)
		require.NoError(t, err)
		assert.Equal(t, plan.Unlimited, status.Remaining)
	})

	t.Run("counter failure", func(t *testing.T) {
		gate, m := newTestPlanGate(t, time.UTC, now)
		m.expectTier(learnerID, "free")
		m.counter.On("IncrementWithin", ctx, learnerID, "chat_messages", day(2026, 3, 14), 10).
			Return(0, false, store.ErrTransactionFailed)

		_, err := gate.RecordChatMessage(ctx, learnerID)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
		assert.NotErrorIs(t, err, ErrPlanLimitReached)
	})
}
