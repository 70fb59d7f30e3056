package middleware

import (
	"strconv"
	"time"

	"github.com/docregistry/docregistry/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per matched route template.
// Unmatched requests are recorded under the route "unmatched".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
