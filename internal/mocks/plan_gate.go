package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockPlanGate is a mock implementation of service.PlanGate.
type MockPlanGate struct {
	mock.Mock
}

var _ service.PlanGate = (*MockPlanGate)(nil)

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
