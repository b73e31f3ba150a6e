package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fluentpath/fluent-api/internal/domain/exercise"
	"github.com/fluentpath/fluent-api/internal/service/practice"
)

// MockPracticeService is a mock implementation of practice.Service.
type MockPracticeService struct {
	mock.Mock
}

var _ practice.Service = (*MockPracticeService)(nil)

func (m *MockPracticeService) SubmitAnswer(
	ctx context.Context,
	learnerID uuid.UUID,
	req practice.SubmitRequest,
) (*practice.Outcome, error) {
	args := m.Called(ctx, learnerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*practice.Outcome), args.Error(1)
}

func (m *MockPracticeService) GetExercise(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	variant exercise.Variant,
) (*exercise.Exercise, error) {
	args := m.Called(ctx, learnerID, itemID, variant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exercise.Exercise), args.Error(1)
}
