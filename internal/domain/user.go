package domain

import (
	"context"
	"time"
)

// User is the subset of a platform user this service reads.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDirectory resolves users owned by the identity subsystem.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
