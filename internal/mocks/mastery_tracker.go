package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/service"
)

// MockMasteryTracker is a mock implementation of service.MasteryTracker.
type MockMasteryTracker struct {
	mock.Mock
}

var _ service.MasteryTracker = (*MockMasteryTracker)(nil)

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
