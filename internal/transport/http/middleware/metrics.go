package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/identity"
	"github.com/ErlanBelekov/workout-tracker/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request latency and counts per route. Websocket upgrades
// are counted but left out of the latency histogram since they last for the
// life of the connection.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		caller := "anonymous"
		if identity.FromContext(c.Request.Context()) != "" {
			caller = "user"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status, caller).Inc()

		if c.IsWebsocket() {
			return
		}
		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
	}
}
