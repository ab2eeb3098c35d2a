package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErlanBelekov/workout-tracker/internal/health"
)

var (
	// Action metrics

	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Name:      "actions_total",
		Help:      "Total dispatched mutations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	ActionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workouts",
		Name:      "action_duration_seconds",
		Help:      "Time from dispatch to result, validation included.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation"})

	// Refresh signal metrics

	InvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Name:      "invalidations_total",
		Help:      "Total listing refresh signals, by path.",
	}, []string{"path"})

	EventSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workouts",
		Name:      "event_subscribers",
		Help:      "Number of connected refresh-signal subscribers.",
	})

	// Reaper metrics

	ReaperPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workouts",
		Name:      "reaper_purged_tokens_total",
		Help:      "Total expired or used sign-in tokens deleted by the reaper.",
	})

	ReaperCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workouts",
		Name:      "reaper_cycle_duration_seconds",
		Help:      "Time taken for one reaper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// Server lifecycle

	ServerStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workouts",
		Name:      "server_start_time_seconds",
		Help:      "Unix timestamp when the server started.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workouts",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests, by route and whether a user was resolved.",
	}, []string{"method", "path", "status", "caller"})
)

func Register() {
	prometheus.MustRegister(
		ActionsTotal,
		ActionDuration,
		InvalidationsTotal,
		EventSubscribers,
		ReaperPurgedTotal,
		ReaperCycleDuration,
		ServerStartTime,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
