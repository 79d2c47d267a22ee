package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
)

// metricsMiddleware records request counts and latency per route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
