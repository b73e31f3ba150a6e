package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockAchievementEvaluator is a mock implementation of service.AchievementEvaluator.
type MockAchievementEvaluator struct {
	mock.Mock
}

var _ service.AchievementEvaluator = (*MockAchievementEvaluator)(nil)

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
