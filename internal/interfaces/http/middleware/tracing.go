package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// TracingWithConfig wraps otelgin. Spans are named after the route pattern
// and carry request_id, plus member_id once TracingAttributeInjector runs
// after authentication.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanErrorMarker marks spans of 4xx and 5xx responses as errors. It must
// run inside the Tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, statusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

// TracingAttributeInjector adds request and member attributes to the
// current span. Place it after the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := c.GetString(JWTMemberIDKey); id != "" {
				span.SetAttributes(attribute.String("member_id", id))
			}
		}
		c.Next()
	}
}

func statusText(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return "Internal Server Error"
	case code == http.StatusUnauthorized:
		return "Unauthorized"
	case code == http.StatusForbidden:
		return "Forbidden"
	case code == http.StatusNotFound:
		return "Not Found"
	}
	return "Client Error"
}
