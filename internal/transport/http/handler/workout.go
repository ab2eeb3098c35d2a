package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/action"
	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/validation"
	"github.com/gin-gonic/gin"
)

type workoutReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]*domain.Workout, error)
	ListAll(ctx context.Context) ([]*domain.Workout, error)
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	Location() *time.Location
}

type actionDispatcher interface {
	Dispatch(ctx context.Context, op action.Operation, payload validation.Payload) action.Result
}

// listingVersions hands out validators for cached listings.
type listingVersions interface {
	ETag(path, scope string) string
}

type WorkoutHandler struct {
	workouts   workoutReader
	dispatcher actionDispatcher
	versions   listingVersions
	logger     *slog.Logger
}

func NewWorkoutHandler(workouts workoutReader, dispatcher actionDispatcher, versions listingVersions, logger *slog.Logger) *WorkoutHandler {
	return &WorkoutHandler{
		workouts:   workouts,
		dispatcher: dispatcher,
		versions:   versions,
		logger:     logger.With("component", "workout_handler"),
	}
}

type workoutResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type listWorkoutsResponse struct {
	Workouts []workoutResponse `json:"workouts"`
}

type resultResponse struct {
	Success bool               `json:"success"`
	Data    *workoutResponse   `json:"data,omitempty"`
	Kind    action.Kind        `json:"kind,omitempty"`
	Error   string             `json:"error,omitempty"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

func toWorkoutResponse(w *domain.Workout) workoutResponse {
	return workoutResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		StartedAt:   w.StartedAt,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// GET /workouts?date=YYYY-MM-DD
// Without date every workout of the caller is listed.
func (h *WorkoutHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Query("date")

	var day time.Time
	if date != "" {
		var err error
		if day, err = domain.ParseDay(date, h.workouts.Location()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDay})
			return
		}
	}

	var etag string
	if userID := identity.FromContext(ctx); userID != "" {
		etag = h.versions.ETag(action.DashboardPath, userID+"|"+date)
		if c.GetHeader("If-None-Match") == etag {
			c.Header("ETag", etag)
			c.Status(http.StatusNotModified)
			return
		}
	}

	var (
		workouts []*domain.Workout
		err      error
	)
	if date != "" {
		workouts, err = h.workouts.ListByDate(ctx, day)
	} else {
		workouts, err = h.workouts.ListAll(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"notice": noticeSignIn})
			return
		}
		h.logger.ErrorContext(ctx, "list workouts", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := listWorkoutsResponse{Workouts: make([]workoutResponse, len(workouts))}
	for i, w := range workouts {
		resp.Workouts[i] = toWorkoutResponse(w)
	}

	if etag != "" {
		c.Header("ETag", etag)
		c.Header("Cache-Control", "private, no-cache")
	}
	c.JSON(http.StatusOK, resp)
}

// GET /workouts/:id
func (h *WorkoutHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	w, err := h.workouts.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"notice": noticeSignIn})
		case errors.Is(err, domain.ErrWorkoutNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errWorkoutNotFound})
		default:
			h.logger.ErrorContext(c.Request.Context(), "get workout by id", "workout_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, toWorkoutResponse(w))
}

// POST /workouts
func (h *WorkoutHandler) Create(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	h.dispatch(c, action.OpCreate, payload, http.StatusCreated)
}

// PATCH /workouts/:id
func (h *WorkoutHandler) Update(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	payload["id"] = c.Param("id")
	h.dispatch(c, action.OpUpdate, payload, http.StatusOK)
}

// DELETE /workouts/:id
func (h *WorkoutHandler) Delete(c *gin.Context) {
	h.dispatch(c, action.OpDelete, validation.Payload{"id": c.Param("id")}, http.StatusOK)
}

// POST /actions/:operation
// The payload is passed through untouched, including any id it carries.
func (h *WorkoutHandler) Action(c *gin.Context) {
	op, ok := action.ParseOperation(c.Param("operation"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownAction})
		return
	}
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	h.dispatch(c, op, payload, http.StatusOK)
}

func (h *WorkoutHandler) dispatch(c *gin.Context, op action.Operation, payload validation.Payload, successStatus int) {
	res := h.dispatcher.Dispatch(c.Request.Context(), op, payload)

	resp := resultResponse{
		Success: res.Success,
		Kind:    res.Kind,
		Error:   res.Message,
		Issues:  res.Issues,
	}
	if res.Data != nil {
		data := toWorkoutResponse(res.Data)
		resp.Data = &data
	}

	c.JSON(resultStatus(res, successStatus), resp)
}

func resultStatus(res action.Result, successStatus int) int {
	if res.Success {
		return successStatus
	}
	switch res.Kind {
	case action.KindValidationFailed:
		return http.StatusBadRequest
	case action.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// bindPayload decodes the body as an untyped JSON object. An empty body is
// an empty payload so the validator can report missing fields.
func bindPayload(c *gin.Context) (validation.Payload, bool) {
	payload := validation.Payload{}
	if c.Request.ContentLength == 0 {
		return payload, true
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPayload})
		return nil, false
	}
	if payload == nil {
		payload = validation.Payload{}
	}
	return payload, true
}
