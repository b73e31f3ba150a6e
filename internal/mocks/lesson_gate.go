package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/unlock"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockLessonGate is a mock implementation of service.LessonGate.
type MockLessonGate struct {
	mock.Mock
}

var _ service.LessonGate = (*MockLessonGate)(nil)

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
