package action_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/action"
	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/infrastructure/memory"
	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
	"github.com/ErlanBelekov/workout-tracker/internal/usecase"
	"github.com/ErlanBelekov/workout-tracker/internal/validation"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ---- fakes ----

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type mockWorkouts struct {
	createFn func(ctx context.Context, input usecase.CreateWorkoutInput) (*domain.Workout, error)
	updateFn func(ctx context.Context, input usecase.UpdateWorkoutInput) (*domain.Workout, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockWorkouts) Create(ctx context.Context, input usecase.CreateWorkoutInput) (*domain.Workout, error) {
	return m.createFn(ctx, input)
}

func (m *mockWorkouts) Update(ctx context.Context, input usecase.UpdateWorkoutInput) (*domain.Workout, error) {
	return m.updateFn(ctx, input)
}

func (m *mockWorkouts) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// ---- helpers ----

const (
	alice = "user_alice"
	bob   = "user_bob"
)

var startedAt = "2025-03-01T07:15:00Z"

type fixture struct {
	store      *memory.WorkoutRepository
	invalidate *recordingInvalidator
	logs       *bytes.Buffer
	dispatcher *action.Dispatcher
}

func newFixture(workouts action.Workouts) *fixture {
	f := &fixture{
		store:      memory.NewWorkoutRepository(),
		invalidate: &recordingInvalidator{},
		logs:       &bytes.Buffer{},
	}
	if workouts == nil {
		workouts = usecase.NewWorkoutUsecase(f.store, identity.ContextResolver{}, time.UTC)
	}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.dispatcher = action.NewDispatcher(workouts, validation.New(time.UTC), f.invalidate, logger)
	return f
}

func asUser(userID string) context.Context {
	return identity.WithUser(context.Background(), userID)
}

func mustCreate(t *testing.T, f *fixture, ctx context.Context, name string) *domain.Workout {
	t.Helper()
	res := f.dispatcher.Dispatch(ctx, action.OpCreate, validation.Payload{"name": name, "startedAt": startedAt})
	if !res.Success {
		t.Fatalf("create %q: %+v", name, res)
	}
	return res.Data
}

// ---- create ----

func TestDispatch_Create_Success(t *testing.T) {
	f := newFixture(nil)

	res := f.dispatcher.Dispatch(asUser(alice), action.OpCreate, validation.Payload{
		"name":      "Leg Day",
		"startedAt": startedAt,
	})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Data == nil || res.Data.Name != "Leg Day" || res.Data.UserID != alice {
		t.Errorf("data = %+v", res.Data)
	}
	if res.Kind != "" || res.Message != "" || res.Issues != nil {
		t.Errorf("success result carries failure fields: %+v", res)
	}
	if got := f.invalidate.calls(); len(got) != 1 || got[0] != action.DashboardPath {
		t.Errorf("invalidations = %v, want [%s]", got, action.DashboardPath)
	}
}

func TestDispatch_Create_ValidationFailureLeavesStorageUntouched(t *testing.T) {
	cases := []struct {
		name    string
		payload validation.Payload
		path    string
	}{
		{"empty name", validation.Payload{"name": "", "startedAt": startedAt}, "name"},
		{"bad startedAt", validation.Payload{"name": "Leg Day", "startedAt": "not a date"}, "startedAt"},
	}
	for _, tc := range cases {
		f := newFixture(nil)

		res := f.dispatcher.Dispatch(asUser(alice), action.OpCreate, tc.payload)

		if res.Success || res.Kind != action.KindValidationFailed {
			t.Errorf("%s: got %+v, want validation_failed", tc.name, res)
			continue
		}
		if len(res.Issues) != 1 || res.Issues[0].Path != tc.path {
			t.Errorf("%s: issues = %+v, want one on %s", tc.name, res.Issues, tc.path)
		}
		if f.store.Len() != 0 {
			t.Errorf("%s: storage modified, len = %d", tc.name, f.store.Len())
		}
		if got := f.invalidate.calls(); len(got) != 0 {
			t.Errorf("%s: unexpected invalidation %v", tc.name, got)
		}
	}
}

func TestDispatch_Create_Unauthenticated_IsForbidden(t *testing.T) {
	f := newFixture(nil)

	res := f.dispatcher.Dispatch(context.Background(), action.OpCreate, validation.Payload{
		"name":      "Leg Day",
		"startedAt": startedAt,
	})

	if res.Success || res.Kind != action.KindForbidden {
		t.Fatalf("got %+v, want forbidden", res)
	}
	if res.Message != action.MsgForbidden {
		t.Errorf("message = %q", res.Message)
	}
	if f.store.Len() != 0 {
		t.Errorf("storage modified, len = %d", f.store.Len())
	}
}

// ---- update / delete ----

func TestDispatch_Update_PartialAndInvalidates(t *testing.T) {
	f := newFixture(nil)
	ctx := asUser(alice)
	w := mustCreate(t, f, ctx, "Old Name")

	res := f.dispatcher.Dispatch(ctx, action.OpUpdate, validation.Payload{"id": w.ID, "name": "New Name"})

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Data.Name != "New Name" || !res.Data.StartedAt.Equal(w.StartedAt) {
		t.Errorf("data = %+v", res.Data)
	}
	if got := f.invalidate.calls(); len(got) != 2 {
		t.Errorf("invalidations = %v, want one per mutation", got)
	}
}

func TestDispatch_ForeignOrMissingWorkout_LooksTheSame(t *testing.T) {
	f := newFixture(nil)
	w := mustCreate(t, f, asUser(alice), "Alice's")

	foreign := f.dispatcher.Dispatch(asUser(bob), action.OpUpdate, validation.Payload{"id": w.ID, "name": "Mine now"})
	missing := f.dispatcher.Dispatch(asUser(bob), action.OpUpdate, validation.Payload{"id": uuid.NewString(), "name": "Mine now"})

	for name, res := range map[string]action.Result{"foreign": foreign, "missing": missing} {
		if res.Success || res.Kind != action.KindForbidden || res.Message != action.MsgForbidden {
			t.Errorf("%s: got %+v, want forbidden", name, res)
		}
	}

	deleted := f.dispatcher.Dispatch(asUser(bob), action.OpDelete, validation.Payload{"id": w.ID})
	if deleted.Kind != action.KindForbidden {
		t.Errorf("foreign delete: got %+v", deleted)
	}
	if f.store.Len() != 1 {
		t.Errorf("foreign delete removed the row")
	}
}

func TestDispatch_Delete_Success(t *testing.T) {
	f := newFixture(nil)
	ctx := asUser(alice)
	w := mustCreate(t, f, ctx, "Temp")

	res := f.dispatcher.Dispatch(ctx, action.OpDelete, validation.Payload{"id": w.ID})

	if !res.Success || res.Data != nil {
		t.Fatalf("got %+v, want success without data", res)
	}
	if f.store.Len() != 0 {
		t.Errorf("row not deleted")
	}
}

// ---- failure mapping ----

func TestDispatch_StorageError_IsUnexpectedAndLogged(t *testing.T) {
	raw := errors.New(`duplicate key value violates unique constraint "workouts_pkey"`)
	f := newFixture(&mockWorkouts{
		createFn: func(context.Context, usecase.CreateWorkoutInput) (*domain.Workout, error) {
			return nil, raw
		},
	})

	res := f.dispatcher.Dispatch(asUser(alice), action.OpCreate, validation.Payload{"name": "x", "startedAt": startedAt})

	if res.Success || res.Kind != action.KindUnexpected {
		t.Fatalf("got %+v, want unexpected", res)
	}
	if res.Message != action.MsgUnexpected || strings.Contains(res.Message, "workouts_pkey") {
		t.Errorf("raw error leaked: %q", res.Message)
	}
	if !strings.Contains(f.logs.String(), "workouts_pkey") {
		t.Errorf("raw error not logged: %s", f.logs.String())
	}
	if got := f.invalidate.calls(); len(got) != 0 {
		t.Errorf("unexpected invalidation %v", got)
	}
}

func TestDispatch_WrappedAccessErrors_AreForbidden(t *testing.T) {
	for _, sentinel := range []error{domain.ErrUnauthenticated, domain.ErrWorkoutNotFound} {
		f := newFixture(&mockWorkouts{
			deleteFn: func(context.Context, string) error {
				return errors.Join(errors.New("delete workout"), sentinel)
			},
		})

		res := f.dispatcher.Dispatch(asUser(alice), action.OpDelete, validation.Payload{"id": uuid.NewString()})
		if res.Kind != action.KindForbidden {
			t.Errorf("%v: got %+v, want forbidden", sentinel, res)
		}
	}
}

func TestDispatch_PanicIsRecovered(t *testing.T) {
	f := newFixture(&mockWorkouts{
		updateFn: func(context.Context, usecase.UpdateWorkoutInput) (*domain.Workout, error) {
			panic("nil map write")
		},
	})

	res := f.dispatcher.Dispatch(asUser(alice), action.OpUpdate, validation.Payload{"id": uuid.NewString()})

	if res.Success || res.Kind != action.KindUnexpected {
		t.Fatalf("got %+v, want unexpected", res)
	}
	if !strings.Contains(f.logs.String(), "action panicked") {
		t.Errorf("panic not logged: %s", f.logs.String())
	}
}

func TestDispatch_UnknownOperation(t *testing.T) {
	f := newFixture(nil)

	res := f.dispatcher.Dispatch(asUser(alice), action.Operation("archive"), validation.Payload{})
	if res.Success || res.Kind != action.KindUnexpected {
		t.Fatalf("got %+v, want unexpected", res)
	}

	if _, ok := action.ParseOperation("archive"); ok {
		t.Error("ParseOperation accepted unknown name")
	}
	if op, ok := action.ParseOperation("update"); !ok || op != action.OpUpdate {
		t.Errorf("ParseOperation(update) = %q, %v", op, ok)
	}
}

func TestDispatch_CountsOutcomes(t *testing.T) {
	f := newFixture(nil)
	counter := metrics.ActionsTotal.WithLabelValues(string(action.OpCreate), string(action.KindValidationFailed))
	before := testutil.ToFloat64(counter)

	f.dispatcher.Dispatch(asUser(alice), action.OpCreate, validation.Payload{})

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("validation_failed counter delta = %v, want 1", got)
	}
}
