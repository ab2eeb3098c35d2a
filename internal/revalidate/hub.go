// Package revalidate tracks which listings are stale and tells connected
// readers when to re-fetch them.
package revalidate

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
)

const subscriberBuffer = 16

// ErrClosed is reported by Ping once the hub has been shut down.
var ErrClosed = errors.New("revalidate hub closed")

// Event announces that path changed. Generation only ever grows for a path.
type Event struct {
	Path       string `json:"path"`
	Generation uint64 `json:"generation"`
}

// Hub keeps a generation counter per logical path and fans out an Event
// each time a path is invalidated.
type Hub struct {
	mu     sync.Mutex
	epoch  string
	gens   map[string]uint64
	subs   map[chan Event]struct{}
	closed bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		epoch:  uuid.NewString()[:8],
		gens:   make(map[string]uint64),
		subs:   make(map[chan Event]struct{}),
		logger: logger.With("component", "revalidate"),
	}
}

// Invalidate bumps the generation of path and notifies subscribers.
// A subscriber whose buffer is full is dropped; it reconnects and
// receives a fresh snapshot.
func (h *Hub) Invalidate(ctx context.Context, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.gens[path]++
	ev := Event{Path: path, Generation: h.gens[path]}
	metrics.InvalidationsTotal.WithLabelValues(path).Inc()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.WarnContext(ctx, "dropping slow subscriber", "path", path)
			delete(h.subs, ch)
			close(ch)
		}
	}
	h.logger.DebugContext(ctx, "path invalidated", "path", path, "generation", ev.Generation)
}

func (h *Hub) Generation(path string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gens[path]
}

// ETag returns a weak validator for a listing of path as seen by scope
// (e.g. user and query). It changes whenever path is invalidated and
// differs between process restarts.
func (h *Hub) ETag(path, scope string) string {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(path + "\x00" + scope))
	return fmt.Sprintf(`W/"%s-%d-%x"`, h.epoch, h.Generation(path), hash.Sum64())
}

// Snapshot returns the current generation of every path invalidated so far,
// ordered by path.
func (h *Hub) Snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := make([]Event, 0, len(h.gens))
	for path, gen := range h.gens {
		events = append(events, Event{Path: path, Generation: gen})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

// Subscribe registers a listener. The channel is closed when the
// subscriber is dropped or the hub shuts down; cancel is safe to call
// more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription. Invalidate keeps counting afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// Ping reports whether the hub still accepts subscribers. It lets the
// readiness probe fail while the server drains.
func (h *Hub) Ping(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return nil
}
