package middleware

import (
	"github.com/ErlanBelekov/workout-tracker/internal/requestid"
	"github.com/gin-gonic/gin"
)

// RequestID tags the request context and response with an X-Request-ID.
// A well-formed upstream ID is kept; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Accept(c.GetHeader("X-Request-ID"))

		c.Request = c.Request.WithContext(requestid.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
