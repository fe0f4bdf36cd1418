package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slms-api/internal/service"
)

// Metrics records request counters and latency histograms per route.
func Metrics(metricsService *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metricsService.ObserveHTTPRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
