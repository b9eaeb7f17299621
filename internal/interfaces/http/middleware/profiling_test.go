package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func labelsOf(ctx context.Context) map[string]string {
	out := map[string]string{}
	pprof.ForLabels(ctx, func(k, v string) bool {
		out[k] = v
		return true
	})
	return out
}

func TestProfilingWithConfig(t *testing.T) {
	var labels map[string]string
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: true, SkipPaths: []string{"/health"}}))
	handler := func(c *gin.Context) {
		labels = labelsOf(c.Request.Context())
		c.Status(http.StatusOK)
	}
	router.GET("/ledger/:id", handler)
	router.GET("/health", handler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ledger/42", nil))
	assert.Equal(t, "GET", labels["method"])
	assert.Equal(t, "/ledger/:id", labels["route"])

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, labels)
}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	var labels map[string]string
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{}))
	router.GET("/test", func(c *gin.Context) {
		labels = labelsOf(c.Request.Context())
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Empty(t, labels)
}
