package middleware

import (
	"context"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/gin-gonic/gin"
)

const metricsFlushTimeout = 5 * time.Second

// MetricsMiddleware publishes request count, latency and error counts per
// route template. Unmatched paths are grouped under "unmatched".
func MetricsMiddleware(metricsClient *awspkg.MetricsClient, serviceName string) gin.HandlerFunc {
	if metricsClient == nil || !metricsClient.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		class := statusCodeToRange(status)
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Route":   route,
			"Status":  class,
		}
		elapsed := time.Since(start)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), metricsFlushTimeout)
			defer cancel()

			_ = metricsClient.RecordCount(ctx, awspkg.MetricHTTPRequests, dims)
			_ = metricsClient.RecordLatency(ctx, awspkg.MetricHTTPLatency, elapsed, dims)
			switch class {
			case "4xx":
				_ = metricsClient.RecordCount(ctx, awspkg.MetricHTTP4xx, dims)
			case "5xx":
				_ = metricsClient.RecordCount(ctx, awspkg.MetricHTTP5xx, dims)
			}
		}()
	}
}

func statusCodeToRange(statusCode int) string {
	if statusCode < 200 || statusCode > 599 {
		return "unknown"
	}
	return string(rune('0'+statusCode/100)) + "xx"
}
