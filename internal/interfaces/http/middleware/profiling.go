package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// ProfilingWithConfig tags CPU samples taken while a request runs with its
// method and route pattern so profiles can be split per endpoint
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(cfg.SkipPaths, route) {
			c.Next()
			return
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(
			"method", c.Request.Method,
			"route", route,
		), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
