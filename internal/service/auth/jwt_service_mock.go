package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockJWTService is a configurable JWTService for handler and middleware
// tests that do not want to sign real tokens.
type MockJWTService struct {
	// Token is returned by GenerateToken.
	Token string
	// Err is returned by both methods when set.
	Err error
	// LearnerID is placed into validated claims.
	LearnerID uuid.UUID

	// ValidateTokenFn overrides ValidateToken when set.
	ValidateTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(_ context.Context, _ uuid.UUID) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Token, nil
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	now := time.Now()
	return &Claims{
		LearnerID: m.LearnerID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ID:        "mock-token",
	}, nil
}
