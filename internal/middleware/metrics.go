package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellfield/rigops/internal/metrics"
)

// Metrics records request counts and latencies against the Prometheus
// collectors. Paths are recorded by route template to keep label
// cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.RequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
