// Package auth validates the bearer tokens learners present to the API.
// Tokens are HMAC-SHA256 JWTs whose subject is the learner id.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations on learner access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for learnerID. Production
	// tokens come from the identity service; this is used for development.
	GenerateToken(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken when
	// validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	// LearnerID is parsed from the subject claim.
	LearnerID uuid.UUID `json:"sub"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
