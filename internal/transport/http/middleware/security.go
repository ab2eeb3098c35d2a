package middleware

import "github.com/gin-gonic/gin"

// Security sets response headers for an API that only serves per-user data.
// Responses may be revalidated with ETags but not stored by shared caches.
// hsts toggles Strict-Transport-Security.
func Security(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "private, no-cache")
		c.Header("Vary", "Authorization")
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}
		c.Next()
	}
}
