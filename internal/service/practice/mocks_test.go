package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/domain/unlock"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockProfileStore is a mock implementation of store.ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, learnerID uuid.UUID) (*domain.ProfileStats, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileStats), args.Error(1)
}

func (m *MockProfileStore) EnsureExists(ctx context.Context, profile domain.ProfileStats) (bool, error) {
	args := m.Called(ctx, profile)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileStore) AddPoints(ctx context.Context, learnerID uuid.UUID, points int) error {
	args := m.Called(ctx, learnerID, points)
	return args.Error(0)
}

// MockMasteryTracker is a mock implementation of service.MasteryTracker.
type MockMasteryTracker struct {
	mock.Mock
}

func (m *MockMasteryTracker) RecordAnswer(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	correct bool,
	now time.Time,
) (*service.MasteryResult, error) {
	args := m.Called(ctx, learnerID, itemID, correct, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MasteryResult), args.Error(1)
}

func (m *MockMasteryTracker) Progress(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	args := m.Called(ctx, learnerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressRecord), args.Error(1)
}

func (m *MockMasteryTracker) MasteredCount(ctx context.Context, learnerID uuid.UUID) (int, error) {
	args := m.Called(ctx, learnerID)
	return args.Int(0), args.Error(1)
}

// MockActivityAggregator is a mock implementation of service.ActivityAggregator.
type MockActivityAggregator struct {
	mock.Mock
}

func (m *MockActivityAggregator) Record(
	ctx context.Context,
	learnerID uuid.UUID,
	tr mastery.Transition,
	now time.Time,
) (*domain.DailyActivityRecord, error) {
	args := m.Called(ctx, learnerID, tr, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyActivityRecord), args.Error(1)
}

func (m *MockActivityAggregator) Today(ctx context.Context, learnerID uuid.UUID) (*service.DayView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayView), args.Error(1)
}

func (m *MockActivityAggregator) History(ctx context.Context, learnerID uuid.UUID, days int) (*service.ActivityHistory, error) {
	args := m.Called(ctx, learnerID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActivityHistory), args.Error(1)
}

func (m *MockActivityAggregator) GoalStreak(ctx context.Context, learnerID uuid.UUID) (int, error) {
	args := m.Called(ctx, learnerID)
	return args.Int(0), args.Error(1)
}

// MockLessonGate is a mock implementation of service.LessonGate.
type MockLessonGate struct {
	mock.Mock
}

func (m *MockLessonGate) InitializeLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	args := m.Called(ctx, learnerID)
	return args.Int(0), args.Error(1)
}

func (m *MockLessonGate) LessonStatus(ctx context.Context, learnerID uuid.UUID, lessonID string) (*service.LessonView, error) {
	args := m.Called(ctx, learnerID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LessonView), args.Error(1)
}

func (m *MockLessonGate) ListLessons(ctx context.Context, learnerID uuid.UUID) ([]service.LessonView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.LessonView), args.Error(1)
}

func (m *MockLessonGate) LevelStatus(ctx context.Context, learnerID uuid.UUID, level domain.Level) (*unlock.LevelState, error) {
	args := m.Called(ctx, learnerID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unlock.LevelState), args.Error(1)
}

func (m *MockLessonGate) Levels(ctx context.Context, learnerID uuid.UUID) ([]unlock.LevelState, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]unlock.LevelState), args.Error(1)
}

func (m *MockLessonGate) CompleteLesson(ctx context.Context, learnerID uuid.UUID, lessonID string) (*service.LessonCompletion, error) {
	args := m.Called(ctx, learnerID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LessonCompletion), args.Error(1)
}

func (m *MockLessonGate) CompleteIfMastered(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	now time.Time,
) (*service.LessonCompletion, error) {
	args := m.Called(ctx, learnerID, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LessonCompletion), args.Error(1)
}

// MockAchievementEvaluator is a mock implementation of service.AchievementEvaluator.
type MockAchievementEvaluator struct {
	mock.Mock
}

func (m *MockAchievementEvaluator) Evaluate(ctx context.Context, learnerID uuid.UUID) ([]badge.Definition, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]badge.Definition), args.Error(1)
}

func (m *MockAchievementEvaluator) Stats(ctx context.Context, learnerID uuid.UUID) (badge.Stats, error) {
	args := m.Called(ctx, learnerID)
	return args.Get(0).(badge.Stats), args.Error(1)
}

func (m *MockAchievementEvaluator) List(ctx context.Context, learnerID uuid.UUID) ([]service.BadgeView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.BadgeView), args.Error(1)
}

func (m *MockAchievementEvaluator) Pending(ctx context.Context, learnerID uuid.UUID) ([]service.BadgeView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.BadgeView), args.Error(1)
}

func (m *MockAchievementEvaluator) Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error) {
	args := m.Called(ctx, learnerID, badgeIDs)
	return args.Int(0), args.Error(1)
}

// MockPlanGate is a mock implementation of service.PlanGate.
type MockPlanGate struct {
	mock.Mock
}

func (m *MockPlanGate) Status(ctx context.Context, learnerID uuid.UUID) (*service.PlanStatus, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanStatus), args.Error(1)
}

func (m *MockPlanGate) Check(ctx context.Context, learnerID uuid.UUID, feature plan.Feature) error {
	args := m.Called(ctx, learnerID, feature)
	return args.Error(0)
}

func (m *MockPlanGate) RecordChatMessage(ctx context.Context, learnerID uuid.UUID) (*plan.FeatureStatus, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.FeatureStatus), args.Error(1)
}
