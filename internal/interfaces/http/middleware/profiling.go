package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelMethod     = "http_method"
	ProfilingLabelRoute      = "http_route"
	ProfilingLabelController = "controller"
)

// Profiling tags CPU samples taken while a request runs with its route, so
// flame graphs can be filtered per endpoint. It is a no-op while the
// profiler is not running.
func Profiling(enabled bool, skipPaths []string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || skipPath(c.Request.URL.Path, skipPaths, []string{"/swagger"}) {
			c.Next()
			return
		}

		labels := []string{
			ProfilingLabelMethod, c.Request.Method,
			ProfilingLabelRoute, route,
		}
		if controller := controllerOf(route); controller != "" {
			labels = append(labels, ProfilingLabelController, controller)
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerOf returns the first static path segment after the API version,
// e.g. "cases" for /api/v1/cases/:id/time-entries
func controllerOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
