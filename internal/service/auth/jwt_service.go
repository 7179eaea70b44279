// Package auth validates the learner tokens that accompany every API
// request. Tokens are issued by the external identity service; this
// package only verifies them and extracts the learner identity.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for learner authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT containing the learner's
	// identity. Used by seeding tools and tests; production tokens come
	// from the identity service, signed with the same shared secret.
	GenerateToken(ctx context.Context, learnerID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts
	// the claims. Returns an error if validation fails (expired,
	// invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for learner tokens.
type Claims struct {
	// LearnerID is the unique identifier of the learner the token was
	// issued for.
	LearnerID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
