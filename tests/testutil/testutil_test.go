package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/persistence/models"
	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", middleware.GetRequestID(tc.Context))

	m := &membership.Member{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Rafi"}
	tc.SetPrincipal(m)
	id, ok := middleware.GetJWTMemberID(tc.Context)
	require.True(t, ok)
	assert.Equal(t, m.ID, id)
	assert.Same(t, m, middleware.GetPrincipal(tc.Context))

	tc.SetParam("id", "42")
	assert.Equal(t, "42", tc.Context.Param("id"))

	tc.SetHeader("Authorization", "Bearer token")
	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))

	tc.Context.String(http.StatusCreated, "done")
	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
	assert.Equal(t, "done", string(tc.ResponseBody()))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestDoAndDecode(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		body["auth"] = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, dto.NewSuccessResponse(body))
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "missing"))
	})

	w := Do(t, engine, Request{Method: http.MethodPost, Path: "/echo", Body: map[string]string{"a": "b"}, Token: "tok"})
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "b", data["a"])
	assert.Equal(t, "Bearer tok", data["auth"])

	w = Do(t, engine, Request{Path: "/fail"})
	AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestMultipart(t *testing.T) {
	body, contentType := Multipart(t, map[string]string{"amount": "500"},
		MultipartFile{Field: "proof", Filename: "p.png", ContentType: "image/png", Data: []byte{1, 2, 3}})

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(1<<20))

	assert.Equal(t, "500", req.FormValue("amount"))
	_, fh, err := req.FormFile("proof")
	require.NoError(t, err)
	assert.Equal(t, int64(3), fh.Size)
	assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}
