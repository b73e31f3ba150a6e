package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockActivityAggregator is a mock implementation of service.ActivityAggregator.
type MockActivityAggregator struct {
	mock.Mock
}

var _ service.ActivityAggregator = (*MockActivityAggregator)(nil)

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
