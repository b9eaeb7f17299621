package middleware

import (
	"context"
	"errors"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrincipalKey holds the *membership.Member behind the request token
const PrincipalKey = "principal"

// PrincipalLoader loads the member a token was issued to
type PrincipalLoader interface {
	Principal(ctx context.Context, id uuid.UUID) (*membership.Member, error)
}

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// LoadPrincipal resolves the token's member so later checks see current
// role, status and permissions rather than what the token carried at issue
func LoadPrincipal(loader PrincipalLoader, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetJWTMemberID(c)
		if !ok {
			abortWith(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		m, err := loader.Principal(c.Request.Context(), id)
		if errors.Is(err, shared.ErrNotFound) {
			abortWith(c, dto.ErrCodeTokenInvalid, "Account no longer exists")
			return
		}
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to load principal", zap.String("member_id", id.String()), zap.Error(err))
			}
			abortWith(c, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		c.Set(PrincipalKey, m)
		c.Next()
	}
}

// GetPrincipal returns the member set by LoadPrincipal
func GetPrincipal(c *gin.Context) *membership.Member {
	if v, ok := c.Get(PrincipalKey); ok {
		if m, ok := v.(*membership.Member); ok {
			return m
		}
	}
	return nil
}

// RequireApproved lets through admins and approved members
func RequireApproved(cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := GetPrincipal(c)
		if m == nil {
			abortWith(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if m.IsAdmin() || m.IsApproved() {
			c.Next()
			return
		}
		code, msg := dto.ErrCodeAccountPending, "Your membership is awaiting admin approval"
		if m.Status == membership.MemberStatusRejected {
			code, msg = dto.ErrCodeAccountRejected, "Your membership application was rejected"
		}
		denied(c, cfg, m, code, msg)
	}
}

// RequireAdmin lets through admins only
func RequireAdmin(cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := GetPrincipal(c)
		if m == nil {
			abortWith(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !m.IsAdmin() {
			denied(c, cfg, m, dto.ErrCodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// RequirePermission lets through admins and approved members holding perm
func RequirePermission(perm membership.Permission, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := GetPrincipal(c)
		if m == nil {
			abortWith(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !m.Can(perm) {
			denied(c, cfg, m, dto.ErrCodeForbidden, "You do not have the "+string(perm)+" permission")
			return
		}
		c.Next()
	}
}

func denied(c *gin.Context, cfg PermissionConfig, m *membership.Member, code, msg string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Permission denied",
			zap.String("member_id", m.ID.String()),
			zap.String("code", code),
			zap.String("path", c.FullPath()))
	}
	abortWith(c, code, msg)
}

func abortWith(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}
