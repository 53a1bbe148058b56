package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/papergraph/internal/metrics"
)

// PrometheusMiddleware records request count, duration and in-flight
// requests, labelled by route pattern. Scrapes of skip paths and
// unmatched routes are not recorded.
func PrometheusMiddleware(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" || skipped[path] {
			c.Next()
			return
		}

		metrics.InFlight.Inc()
		defer metrics.InFlight.Dec()

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
