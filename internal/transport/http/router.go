package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/workout-tracker/internal/repository"
	"github.com/ErlanBelekov/workout-tracker/internal/transport/http/handler"
	"github.com/ErlanBelekov/workout-tracker/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// NewRouter wires every public route. authenticate is the middleware built
// by middleware.Authenticate; events serves the listing refresh stream.
func NewRouter(
	logger *slog.Logger,
	hsts bool,
	workoutHandler *handler.WorkoutHandler,
	authHandler *handler.AuthHandler,
	events http.Handler,
	userRepo repository.UserRepository,
	authenticate gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(hsts))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Sign-in
	auth := r.Group("/auth")
	auth.POST("/magic-link", authHandler.RequestMagicLink)
	auth.GET("/verify", authHandler.Verify)

	ensureUser := middleware.EnsureUser(userRepo, logger)

	// Workout routes resolve identity but do not reject anonymous callers;
	// the usecase answers them with a sign-in notice or a forbidden result.
	workouts := r.Group("/workouts", authenticate, ensureUser)
	workouts.GET("", workoutHandler.List)
	workouts.POST("", workoutHandler.Create)
	workouts.GET("/:id", workoutHandler.GetByID)
	workouts.PATCH("/:id", workoutHandler.Update)
	workouts.DELETE("/:id", workoutHandler.Delete)

	r.POST("/actions/:operation", authenticate, ensureUser, workoutHandler.Action)

	r.GET("/events", middleware.BearerFromQuery("access_token"), authenticate, middleware.RequireUser(), gin.WrapH(events))

	return r
}
