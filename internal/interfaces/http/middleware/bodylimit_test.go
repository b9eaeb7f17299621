package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/api/v1/me/donations", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "proof too large"))
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(gin.H{"bytes": len(body)}))
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{name: "donation within limit", body: `{"amount":"500"}`, contentLength: 16, wantStatus: http.StatusCreated},
		{name: "declared length over limit", body: strings.Repeat("x", 200), contentLength: 200, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "chunked proof over limit", body: strings.Repeat("x", 200), contentLength: -1, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBodyLimitRouter(64)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/me/donations", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBodyLimit_RejectionEnvelope(t *testing.T) {
	router := newBodyLimitRouter(64)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/donations", strings.NewReader(strings.Repeat("x", 200)))
	req.Header.Set(RequestIDHeader, "req-proof-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-proof-1", resp.Error.RequestID)
	assert.Equal(t, "req-proof-1", w.Header().Get(RequestIDHeader))
}
