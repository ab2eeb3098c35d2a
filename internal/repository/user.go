package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
)

type UserRepository interface {
	// Upsert makes sure a row exists for an identity issued elsewhere,
	// so workouts.user_id always satisfies its foreign key.
	Upsert(ctx context.Context, userID string) error
	FindOrCreate(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	CreateMagicToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ClaimMagicToken(ctx context.Context, tokenHash string) (*domain.MagicToken, error)
}
