package handler

import (
	identityapp "github.com/comfund/backend/internal/application/identity"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LogoutRequest optionally names the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register godoc
// @Summary      Apply for membership
// @Description  Creates a pending member account that an admin must approve before it can sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RegisterRequest true "Membership application"
// @Success      201 {object} APIResponse[identityapp.RegisterResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @Summary      Member login
// @Description  Authenticate with email and password. Pending and rejected accounts are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identityapp.TokenResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh godoc
// @Summary      Refresh access token
// @Description  Exchanges a refresh token for a new token pair. The used refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[identityapp.TokenResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the current access token and the given refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	id, ok := middleware.GetJWTMemberID(c)
	if claims == nil || !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		MemberID:     id,
		AccessJTI:    claims.ID,
		AccessTTL:    claims.RemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// Me godoc
// @Summary      Current member
// @Description  Returns the signed-in member, including pending or rejected status
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.MemberInfo]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.GetJWTMemberID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	info, err := h.authService.Me(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
