// Package memory holds process-local stores used for STORAGE_DRIVER=memory
// and in unit tests. Rows are lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/google/uuid"
)

type WorkoutRepository struct {
	mu       sync.RWMutex
	workouts map[string]domain.Workout
	now      func() time.Time
}

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{
		workouts: make(map[string]domain.Workout),
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source. Meant for tests.
func (r *WorkoutRepository) WithClock(now func() time.Time) *WorkoutRepository {
	r.now = now
	return r
}

func (r *WorkoutRepository) Insert(_ context.Context, nw domain.NewWorkout) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w := domain.Workout{
		ID:        uuid.NewString(),
		UserID:    nw.UserID,
		Name:      nw.Name,
		StartedAt: nw.StartedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.workouts[w.ID] = w
	return &w, nil
}

func (r *WorkoutRepository) FindOwned(_ context.Context, id, userID string) (*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, domain.ErrWorkoutNotFound
	}
	return &w, nil
}

func (r *WorkoutRepository) ListOwned(_ context.Context, userID string, window *domain.TimeRange) ([]*domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Workout, 0)
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if window != nil && !window.Contains(w.StartedAt) {
			continue
		}
		w := w
		out = append(out, &w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (r *WorkoutRepository) UpdateOwned(_ context.Context, id, userID string, patch domain.WorkoutPatch) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, domain.ErrWorkoutNotFound
	}

	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.StartedAt != nil {
		w.StartedAt = *patch.StartedAt
	}

	// updated_at must move forward even when the clock has not ticked
	now := r.now()
	if !now.After(w.UpdatedAt) {
		now = w.UpdatedAt.Add(time.Microsecond)
	}
	w.UpdatedAt = now

	r.workouts[id] = w
	return &w, nil
}

func (r *WorkoutRepository) DeleteOwned(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return domain.ErrWorkoutNotFound
	}
	delete(r.workouts, id)
	return nil
}

// Len reports the number of stored rows across all users.
func (r *WorkoutRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workouts)
}
