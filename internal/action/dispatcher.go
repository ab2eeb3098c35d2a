package action

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
	"github.com/ErlanBelekov/workout-tracker/internal/usecase"
	"github.com/ErlanBelekov/workout-tracker/internal/validation"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ParseOperation maps the wire name of a mutation to an Operation.
func ParseOperation(s string) (Operation, bool) {
	switch op := Operation(s); op {
	case OpCreate, OpUpdate, OpDelete:
		return op, true
	default:
		return "", false
	}
}

type Kind string

const (
	KindValidationFailed Kind = "validation_failed"
	KindForbidden        Kind = "forbidden"
	KindUnexpected       Kind = "unexpected"
)

// User-facing messages. Internal error text never reaches the caller.
const (
	MsgForbidden  = "You don't have permission to do that. Please sign in and try again."
	MsgUnexpected = "Something went wrong. Please try again."
)

// DashboardPath is the listing marked stale after every successful mutation.
const DashboardPath = "/dashboard"

// Result is the outcome of one dispatch. Data is nil for a successful delete.
type Result struct {
	Success bool
	Data    *domain.Workout
	Kind    Kind
	Message string
	Issues  []validation.Issue
}

// Workouts is the part of the workout usecase the dispatcher drives.
type Workouts interface {
	Create(ctx context.Context, input usecase.CreateWorkoutInput) (*domain.Workout, error)
	Update(ctx context.Context, input usecase.UpdateWorkoutInput) (*domain.Workout, error)
	Delete(ctx context.Context, id string) error
}

// Invalidator marks a listing as stale so readers re-fetch it.
type Invalidator interface {
	Invalidate(ctx context.Context, path string)
}

type Dispatcher struct {
	workouts    Workouts
	validator   *validation.Validator
	invalidator Invalidator
	logger      *slog.Logger
}

func NewDispatcher(workouts Workouts, validator *validation.Validator, invalidator Invalidator, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		workouts:    workouts,
		validator:   validator,
		invalidator: invalidator,
		logger:      logger.With("component", "action"),
	}
}

// Dispatch validates payload against the operation's schema, runs the
// operation and folds every outcome into a Result. It never panics and
// never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation, payload validation.Payload) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "action panicked", "operation", op, "panic", r)
			res = unexpected()
		}
		metrics.ActionsTotal.WithLabelValues(string(op), outcome(res)).Inc()
		metrics.ActionDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	}()

	var (
		data *domain.Workout
		err  error
	)

	switch op {
	case OpCreate:
		in, f := d.validator.ValidateCreate(payload)
		if f != nil {
			return invalid(f)
		}
		data, err = d.workouts.Create(ctx, usecase.CreateWorkoutInput{
			Name:      in.Name,
			StartedAt: in.StartedAt,
		})
	case OpUpdate:
		in, f := d.validator.ValidateUpdate(payload)
		if f != nil {
			return invalid(f)
		}
		data, err = d.workouts.Update(ctx, usecase.UpdateWorkoutInput{
			ID:        in.ID,
			Name:      in.Name,
			StartedAt: in.StartedAt,
		})
	case OpDelete:
		in, f := d.validator.ValidateDelete(payload)
		if f != nil {
			return invalid(f)
		}
		err = d.workouts.Delete(ctx, in.ID)
	default:
		err = fmt.Errorf("unknown operation %q", op)
	}

	if err != nil {
		return d.failure(ctx, op, err)
	}

	d.invalidator.Invalidate(ctx, DashboardPath)
	return Result{Success: true, Data: data}
}

func (d *Dispatcher) failure(ctx context.Context, op Operation, err error) Result {
	if usecase.IsAccessDenied(err) {
		d.logger.DebugContext(ctx, "action denied", "operation", op, "error", err)
		return Result{Kind: KindForbidden, Message: MsgForbidden}
	}
	d.logger.ErrorContext(ctx, "action failed", "operation", op, "error", err)
	return unexpected()
}

func invalid(f *validation.Failure) Result {
	return Result{Kind: KindValidationFailed, Issues: f.Issues}
}

func unexpected() Result {
	return Result{Kind: KindUnexpected, Message: MsgUnexpected}
}

func outcome(r Result) string {
	if r.Success {
		return "success"
	}
	return string(r.Kind)
}
