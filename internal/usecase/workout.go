package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/repository"
)

// WorkoutUsecase is the owner-scoped data access layer. Every operation
// resolves the caller first and never accepts a user ID from input.
type WorkoutUsecase struct {
	store    repository.WorkoutStore
	identity identity.Resolver
	loc      *time.Location
}

// NewWorkoutUsecase builds the usecase. loc is the zone calendar days are cut in.
func NewWorkoutUsecase(store repository.WorkoutStore, resolver identity.Resolver, loc *time.Location) *WorkoutUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &WorkoutUsecase{store: store, identity: resolver, loc: loc}
}

func (u *WorkoutUsecase) Location() *time.Location { return u.loc }

type CreateWorkoutInput struct {
	Name      string
	StartedAt time.Time
}

type UpdateWorkoutInput struct {
	ID        string
	Name      *string
	StartedAt *time.Time
}

func (u *WorkoutUsecase) currentUser(ctx context.Context) (string, error) {
	userID, ok := u.identity.CurrentUser(ctx)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

// ListByDate returns the caller's workouts that started on the calendar day of date.
func (u *WorkoutUsecase) ListByDate(ctx context.Context, date time.Time) ([]*domain.Workout, error) {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	window := domain.DayWindow(date, u.loc)
	workouts, err := u.store.ListOwned(ctx, userID, &window)
	if err != nil {
		return nil, fmt.Errorf("list workouts by date: %w", err)
	}
	return workouts, nil
}

func (u *WorkoutUsecase) ListAll(ctx context.Context) ([]*domain.Workout, error) {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := u.store.ListOwned(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

func (u *WorkoutUsecase) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	w, err := u.store.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

func (u *WorkoutUsecase) Create(ctx context.Context, input CreateWorkoutInput) (*domain.Workout, error) {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	created, err := u.store.Insert(ctx, domain.NewWorkout{
		UserID:    userID,
		Name:      input.Name,
		StartedAt: input.StartedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	return created, nil
}

func (u *WorkoutUsecase) Update(ctx context.Context, input UpdateWorkoutInput) (*domain.Workout, error) {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	current, err := u.store.FindOwned(ctx, input.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}

	patch := domain.WorkoutPatch{Name: input.Name, StartedAt: input.StartedAt}
	updated, err := u.store.UpdateOwned(ctx, current.ID, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	return updated, nil
}

func (u *WorkoutUsecase) Delete(ctx context.Context, id string) error {
	userID, err := u.currentUser(ctx)
	if err != nil {
		return err
	}

	if _, err := u.store.FindOwned(ctx, id, userID); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if err := u.store.DeleteOwned(ctx, id, userID); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// IsAccessDenied reports whether err is one of the failures that must look
// the same to the caller: nobody signed in, or the workout is not theirs.
func IsAccessDenied(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrWorkoutNotFound)
}
