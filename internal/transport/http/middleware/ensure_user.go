package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/repository"
	"github.com/gin-gonic/gin"
)

// EnsureUser runs after Authenticate. It upserts the resolved user ID into
// the users table so the workouts.user_id foreign key always holds, which
// matters for identities issued by an external JWKS provider.
// Anonymous requests pass through untouched.
func EnsureUser(repo repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity.FromContext(c.Request.Context())
		if userID == "" {
			c.Next()
			return
		}
		if err := repo.Upsert(c.Request.Context(), userID); err != nil {
			logger.ErrorContext(c.Request.Context(), "ensure user upsert", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		c.Next()
	}
}
