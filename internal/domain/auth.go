package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	// ErrUnauthenticated means no identity could be resolved for the call.
	ErrUnauthenticated = errors.New("unauthenticated")
)

type User struct {
	ID        string
	Email     *string // nil for identities created by an external provider
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MagicToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
