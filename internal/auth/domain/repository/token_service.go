package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and checks the bearer tokens operators send to the content API
// and the change feed. ValidateToken rejects tokens from another issuer or past expiry.
type TokenService interface {
	GenerateToken(ctx context.Context, userID, email string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims identify the operator behind a request. The email is recorded as the actor
// of every collection change.
type Claims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
