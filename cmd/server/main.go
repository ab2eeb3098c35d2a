package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/ErlanBelekov/workout-tracker/config"
	"github.com/ErlanBelekov/workout-tracker/internal/action"
	"github.com/ErlanBelekov/workout-tracker/internal/email"
	"github.com/ErlanBelekov/workout-tracker/internal/health"
	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/infrastructure/memory"
	"github.com/ErlanBelekov/workout-tracker/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/workout-tracker/internal/log"
	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
	"github.com/ErlanBelekov/workout-tracker/internal/reaper"
	"github.com/ErlanBelekov/workout-tracker/internal/repository"
	"github.com/ErlanBelekov/workout-tracker/internal/revalidate"
	httptransport "github.com/ErlanBelekov/workout-tracker/internal/transport/http"
	"github.com/ErlanBelekov/workout-tracker/internal/transport/http/handler"
	"github.com/ErlanBelekov/workout-tracker/internal/transport/http/middleware"
	"github.com/ErlanBelekov/workout-tracker/internal/usecase"
	"github.com/ErlanBelekov/workout-tracker/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var (
		workoutStore repository.WorkoutStore
		userRepo     repository.UserRepository
		tokens       reaper.TokenStore
		deps         = map[string]health.Pinger{}
	)
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		users := memory.NewUserRepository()
		workoutStore = memory.NewWorkoutRepository()
		userRepo, tokens = users, users
	default:
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		users := postgres.NewUserRepository(pool)
		workoutStore = postgres.NewWorkoutRepository(pool)
		userRepo, tokens = users, users
		deps["postgres"] = pool
	}

	// Auth
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sender, []byte(cfg.JWTSecret), cfg.MagicLinkBase, cfg.SessionTTL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)
	authenticate, err := middleware.Authenticate(ctx, cfg.JWKSURL, []byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	go reaper.NewReaper(tokens, cfg.TokenReaperInterval, cfg.TokenRetention, logger).Start(ctx)

	// Workouts
	hub := revalidate.NewHub(logger)
	defer hub.Close()
	deps["events"] = hub
	workoutUsecase := usecase.NewWorkoutUsecase(workoutStore, identity.ContextResolver{}, loc)
	dispatcher := action.NewDispatcher(workoutUsecase, validation.New(loc), hub, logger)
	workoutHandler := handler.NewWorkoutHandler(workoutUsecase, dispatcher, hub, logger)
	events := revalidate.NewStream(hub, cfg.AllowedOrigins, logger)

	metrics.Register()
	metrics.ServerStartTime.SetToCurrentTime()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, cfg.Env != "local", workoutHandler, authHandler, events, userRepo, authenticate),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "storage", cfg.StorageDriver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	// Websocket connections are hijacked and not tracked by Shutdown.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
