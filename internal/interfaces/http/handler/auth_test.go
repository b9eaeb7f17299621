package handler_test

import (
	"net/http"
	"testing"

	identityapp "github.com/comfund/backend/internal/application/identity"
	membershipapp "github.com/comfund/backend/internal/application/membership"
	"github.com/comfund/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_RegisterAndApproval(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/auth/register", "", identityapp.RegisterRequest{
		Name:       "  Tania   Akter ",
		Email:      "Tania@Example.com",
		Password:   "member-secret",
		BloodGroup: "B+",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := testutil.DecodeData[identityapp.RegisterResult](t, w)
	assert.Equal(t, "Tania Akter", result.Member.Name)
	assert.Equal(t, "tania@example.com", result.Member.Email)
	assert.Equal(t, "Pending", result.Member.Status)
	assert.False(t, result.Member.Approved)
	assert.NotEmpty(t, result.Message)

	t.Run("duplicate email", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/register", "", identityapp.RegisterRequest{
			Name: "Other", Email: "tania@example.com", Password: "member-secret",
		})
		testutil.AssertErrorCode(t, w, http.StatusConflict, "ALREADY_EXISTS")
	})

	t.Run("validation", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "X", "email": "nope", "password": "123"})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		env := testutil.DecodeEnvelope(t, w)
		assert.NotEmpty(t, env.Error.Details)
	})

	t.Run("pending member cannot sign in", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", identityapp.LoginRequest{Email: "tania@example.com", Password: "member-secret"})
		testutil.AssertErrorCode(t, w, http.StatusForbidden, "ACCOUNT_PENDING")
	})

	w = f.do(t, http.MethodPatch, "/api/v1/admin/members/"+result.Member.ID.String()+"/status", f.adminToken,
		membershipapp.SetStatusRequest{Status: "Approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tokens := f.login(t, "TANIA@example.com", "member-secret")
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, result.Member.ID, tokens.Member.ID)
	assert.True(t, tokens.Member.Approved)
	assert.Contains(t, tokens.Member.Permissions, "viewFund")

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := testutil.DecodeData[identityapp.MemberInfo](t, w)
	assert.Equal(t, "Approved", me.Status)
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		code     string
	}{
		{"wrong password", adminEmail, "nope-nope", http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown email", "ghost@comfund.test", "whatever", http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing password", adminEmail, "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", identityapp.LoginRequest{Email: tt.email, Password: tt.password})
			testutil.AssertErrorCode(t, w, tt.status, tt.code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		w := testutil.Do(t, f.engine, testutil.Request{
			Method:  http.MethodPost,
			Path:    "/api/v1/auth/login",
			Body:    testutil.ToJSONReader(t, "not an object"),
			Headers: map[string]string{"Content-Type": "application/json"},
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "INVALID_JSON")
	})
}

func TestAuthHandler_RejectedMemberCannotSignIn(t *testing.T) {
	f := newAPIFixture(t)
	id := f.register(t, "Rejected Person", "rejected@comfund.test")

	w := f.do(t, http.MethodPatch, "/api/v1/admin/members/"+id.String()+"/status", f.adminToken,
		membershipapp.SetStatusRequest{Status: "Rejected"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/auth/login", "", identityapp.LoginRequest{Email: "rejected@comfund.test", Password: "member-secret"})
	testutil.AssertErrorCode(t, w, http.StatusForbidden, "ACCOUNT_REJECTED")
}

func TestAuthHandler_RefreshRotatesToken(t *testing.T) {
	f := newAPIFixture(t)
	tokens := f.login(t, adminEmail, adminPassword)

	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", identityapp.RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fresh := testutil.DecodeData[identityapp.TokenResult](t, w)
	assert.NotEmpty(t, fresh.AccessToken)

	// a refresh token is single use
	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", identityapp.RefreshRequest{RefreshToken: tokens.RefreshToken})
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_REVOKED")

	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", identityapp.RefreshRequest{RefreshToken: fresh.AccessToken})
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAPIFixture(t)
	tokens := f.login(t, adminEmail, adminPassword)

	w := f.do(t, http.MethodPost, "/api/v1/auth/logout", tokens.AccessToken, map[string]string{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_REVOKED")

	w = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", identityapp.RefreshRequest{RefreshToken: tokens.RefreshToken})
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_REVOKED")

	// other sessions stay valid
	w = f.do(t, http.MethodGet, "/api/v1/auth/me", f.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_MissingToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}
