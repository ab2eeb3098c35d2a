package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workoutColumns = `id, user_id, name, started_at, completed_at, created_at, updated_at`

type WorkoutRepository struct {
	pool *pgxpool.Pool
}

func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{pool: pool}
}

func (r *WorkoutRepository) Insert(ctx context.Context, w domain.NewWorkout) (*domain.Workout, error) {
	query := `
		INSERT INTO workouts (user_id, name, started_at)
		VALUES ($1, $2, $3)
		RETURNING ` + workoutColumns

	created, err := scanWorkout(r.pool.QueryRow(ctx, query, w.UserID, w.Name, w.StartedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// users row missing, EnsureUser did not run for this identity
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	return created, nil
}

func (r *WorkoutRepository) FindOwned(ctx context.Context, id, userID string) (*domain.Workout, error) {
	// a malformed id cannot exist; answer like any other miss instead of a cast error
	if uuid.Validate(id) != nil {
		return nil, domain.ErrWorkoutNotFound
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = $1 AND user_id = $2`
	return scanWorkout(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *WorkoutRepository) ListOwned(ctx context.Context, userID string, window *domain.TimeRange) ([]*domain.Workout, error) {
	args := []any{userID}
	where := "user_id = $1"
	if window != nil {
		args = append(args, window.From, window.To)
		where += " AND started_at >= $2 AND started_at <= $3"
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE ` + where +
		` ORDER BY started_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	workouts := make([]*domain.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

func (r *WorkoutRepository) UpdateOwned(ctx context.Context, id, userID string, patch domain.WorkoutPatch) (*domain.Workout, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrWorkoutNotFound
	}

	query := `
		UPDATE workouts
		SET    name       = COALESCE($3, name),
		       started_at = COALESCE($4, started_at),
		       updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING ` + workoutColumns

	return scanWorkout(r.pool.QueryRow(ctx, query, id, userID, patch.Name, patch.StartedAt))
}

func (r *WorkoutRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrWorkoutNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*domain.Workout, error) {
	var w domain.Workout
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("scan workout: %w", err)
	}
	return &w, nil
}
