package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BartekB-it/prawda-w-sieci-verifier/metrics"
)

// MetricsMiddleware counts requests per matched route and status code.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
