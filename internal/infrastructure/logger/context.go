package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
	memberIDKey
)

// WithContext attaches l to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns a logger tagged with it
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l = l.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// WithMemberID stores the authenticated member and returns a logger tagged with it
func WithMemberID(ctx context.Context, l *zap.Logger, memberID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, memberIDKey, memberID)
	l = l.With(zap.String("member_id", memberID))
	return WithContext(ctx, l), l
}

// RequestID returns the request ID stored in ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// MemberID returns the member ID stored in ctx
func MemberID(ctx context.Context) string {
	id, _ := ctx.Value(memberIDKey).(string)
	return id
}

// L returns the context logger with trace_id and span_id added when ctx
// carries a sampled span.
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
