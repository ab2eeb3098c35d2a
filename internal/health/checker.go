package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool and *revalidate.Hub.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker pings named dependencies: the database when postgres storage is
// configured, and the refresh hub so readiness drops while shutting down.
type Checker struct {
	deps   map[string]Pinger
	names  []string
	logger *slog.Logger
	up     *prometheus.GaugeVec
}

// NewChecker registers the workouts_health_check_up gauge on reg.
func NewChecker(deps map[string]Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	up := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workouts",
		Name:      "health_check_up",
		Help:      "Whether a dependency answered its last readiness check. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(up)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Checker{
		deps:   deps,
		names:  names,
		logger: logger.With("component", "health"),
		up:     up,
	}
}

func (c *Checker) Liveness(context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency concurrently, each bounded by checkTimeout.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make([]CheckResult, len(c.names))
	var wg sync.WaitGroup
	for i, name := range c.names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.check(checkCtx, name)
		}()
	}
	wg.Wait()

	out := HealthResult{Status: "up", Checks: make(map[string]CheckResult, len(c.names))}
	for i, name := range c.names {
		out.Checks[name] = results[i]
		if results[i].Status != "up" {
			out.Status = "down"
		}
	}
	return out
}

func (c *Checker) check(ctx context.Context, name string) CheckResult {
	start := time.Now()
	err := c.deps[name].Ping(ctx)
	res := CheckResult{Status: "up", LatencyMS: time.Since(start).Milliseconds()}

	if err != nil {
		c.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
		res.Status = "down"
		res.Error = err.Error()
		c.up.WithLabelValues(name).Set(0)
		return res
	}
	c.up.WithLabelValues(name).Set(1)
	return res
}
