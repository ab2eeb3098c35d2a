package repository

import (
	"context"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
)

// WorkoutStore is the storage port for workouts. Every method is scoped to
// userID; a row owned by someone else behaves exactly like a missing row
// (domain.ErrWorkoutNotFound).
type WorkoutStore interface {
	Insert(ctx context.Context, w domain.NewWorkout) (*domain.Workout, error)
	FindOwned(ctx context.Context, id, userID string) (*domain.Workout, error)

	// ListOwned returns the user's workouts ordered by started_at ASC.
	// A nil window means no date filter.
	ListOwned(ctx context.Context, userID string, window *domain.TimeRange) ([]*domain.Workout, error)

	// UpdateOwned applies the non-nil fields of patch and refreshes updated_at.
	UpdateOwned(ctx context.Context, id, userID string, patch domain.WorkoutPatch) (*domain.Workout, error)
	DeleteOwned(ctx context.Context, id, userID string) error
}
