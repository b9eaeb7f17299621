package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNew(t *testing.T) {
	t.Run("stdout json", func(t *testing.T) {
		l, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(Config{Level: "warn", Format: "console", Output: path})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.FileExists(t, path)
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithMemberID(ctx, FromContext(ctx), "mem-1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "mem-1", MemberID(ctx))

	L(ctx).Info("hello")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "mem-1", fields["member_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestLAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	L(ctx).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, RequestID(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "rid-9"); c.Next() })
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "rid-9", RequestID(c.Request.Context()))
		FromGin(c).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?x=1", nil))
	}

	requests := logs.FilterMessage("HTTP Request").All()
	require.Len(t, requests, 3)
	assert.Equal(t, zapcore.InfoLevel, requests[0].Level)
	assert.Equal(t, zapcore.WarnLevel, requests[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, requests[2].Level)
	assert.Equal(t, "x=1", requests[0].ContextMap()["query"])

	inside := logs.FilterMessage("inside").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "/ok", inside[0].ContextMap()["path"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestFromGinWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, FromGin(c))
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 50*time.Millisecond)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), fc, nil)
	gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	gl.Trace(context.Background(), time.Now(), fc, errors.New("syntax"))
	gl.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)

	assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	assert.Equal(t, 1, logs.FilterMessage("SQL error").Len())
	assert.Equal(t, 2, logs.FilterMessage("SQL").Len())

	silent := gl.LogMode(gormlogger.Silent)
	before := logs.Len()
	silent.Trace(context.Background(), time.Now(), fc, errors.New("ignored"))
	silent.Error(context.Background(), "ignored %d", 1)
	assert.Equal(t, before, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}
