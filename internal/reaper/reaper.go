// Package reaper periodically deletes sign-in tokens that can no longer be redeemed.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
)

const batchSize = 500

// TokenStore is satisfied by the postgres and memory user repositories.
type TokenStore interface {
	// PurgeMagicTokens deletes up to limit tokens that expired or were used before cutoff.
	PurgeMagicTokens(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type Reaper struct {
	store     TokenStore
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewReaper returns a reaper that runs every interval and keeps dead tokens
// for retention before deleting them.
func NewReaper(store TokenStore, interval, retention time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger.With("component", "reaper"),
	}
}

// Start blocks until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "retention", r.retention)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper: shut down")
			return
		case <-ticker.C:
			r.Reap(ctx)
		}
	}
}

// Reap runs one cycle, deleting in batches until a short batch comes back.
func (r *Reaper) Reap(ctx context.Context) int64 {
	start := time.Now()
	defer func() {
		metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := start.Add(-r.retention)
	var total int64
	for ctx.Err() == nil {
		n, err := r.store.PurgeMagicTokens(ctx, cutoff, batchSize)
		if err != nil {
			r.logger.ErrorContext(ctx, "purge magic tokens", "error", err)
			break
		}
		total += n
		if n < batchSize {
			break
		}
	}

	if total > 0 {
		metrics.ReaperPurgedTotal.Add(float64(total))
		r.logger.InfoContext(ctx, "purged magic tokens", "count", total)
	}
	return total
}
