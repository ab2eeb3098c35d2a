package reaper_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/infrastructure/memory"
	"github.com/ErlanBelekov/workout-tracker/internal/reaper"
)

type batchStore struct {
	batches []int64
	err     error
	calls   int
	cutoffs []time.Time
}

func (s *batchStore) PurgeMagicTokens(_ context.Context, cutoff time.Time, _ int) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	if s.err != nil {
		return 0, s.err
	}
	if s.calls >= len(s.batches) {
		return 0, nil
	}
	n := s.batches[s.calls]
	s.calls++
	return n, nil
}

func TestReap_DrainsFullBatches(t *testing.T) {
	store := &batchStore{batches: []int64{500, 500, 12}}
	r := reaper.NewReaper(store, time.Minute, time.Hour, slog.Default())

	if got := r.Reap(context.Background()); got != 1012 {
		t.Errorf("purged = %d, want 1012", got)
	}
	if store.calls != 3 {
		t.Errorf("calls = %d, want 3", store.calls)
	}
	if d := time.Since(store.cutoffs[0]); d < time.Hour || d > time.Hour+time.Minute {
		t.Errorf("cutoff %v is not ~retention ago", store.cutoffs[0])
	}
}

func TestReap_StopsOnError(t *testing.T) {
	store := &batchStore{err: errors.New("db down")}
	r := reaper.NewReaper(store, time.Minute, time.Hour, slog.Default())

	if got := r.Reap(context.Background()); got != 0 {
		t.Errorf("purged = %d, want 0", got)
	}
	if len(store.cutoffs) != 1 {
		t.Errorf("attempts = %d, want 1", len(store.cutoffs))
	}
}

func TestReap_MemoryStoreKeepsLiveTokens(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	u, _ := users.FindOrCreate(ctx, "a@example.com")

	_ = users.CreateMagicToken(ctx, u.ID, "expired", time.Now().Add(-48*time.Hour))
	_ = users.CreateMagicToken(ctx, u.ID, "live", time.Now().Add(time.Hour))

	r := reaper.NewReaper(users, time.Minute, 24*time.Hour, slog.Default())
	if got := r.Reap(ctx); got != 1 {
		t.Fatalf("purged = %d, want 1", got)
	}

	if _, err := users.ClaimMagicToken(ctx, "live"); err != nil {
		t.Errorf("live token was purged: %v", err)
	}
}

func TestStart_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := reaper.NewReaper(&batchStore{}, 10*time.Millisecond, time.Hour, slog.Default())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
