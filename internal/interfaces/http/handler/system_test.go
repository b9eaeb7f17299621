package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/comfund/backend/internal/interfaces/http/handler"
	"github.com/comfund/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	health := testutil.DecodeData[handler.HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Database)
	assert.Equal(t, "comfund", health.Name)
	assert.NotEmpty(t, health.GoVersion)

	w = f.do(t, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", testutil.DecodeData[handler.MessageData](t, w).Message)
}

func TestSystemHandler_DatabaseDown(t *testing.T) {
	f := newAPIFixture(t, withPing(func(context.Context) error {
		return errors.New("connection refused")
	}))

	w := f.do(t, http.MethodGet, "/health", "", nil)
	testutil.AssertErrorCode(t, w, http.StatusServiceUnavailable, "SERVICE_UNHEALTHY")
}
