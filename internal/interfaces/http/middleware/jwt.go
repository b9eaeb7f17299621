package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/comfund/backend/internal/infrastructure/auth"
	"github.com/comfund/backend/internal/infrastructure/logger"
	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTMemberIDKey = "jwt_member_id"
	JWTEmailKey    = "jwt_email"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	// QueryTokenKey carries the access token for clients that cannot set
	// headers, such as EventSource
	QueryTokenKey = "access_token"
)

// RevocationChecker reports whether a validated access token was revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, claims *auth.Claims) (bool, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocation is optional for checking logged-out tokens
	Revocation RevocationChecker
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// QueryTokenPaths may pass the token as ?access_token=
	QueryTokenPaths []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, ok := extractToken(c, cfg)
		if !ok {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.Revocation != nil {
			revoked, err := cfg.Revocation.IsRevoked(c.Request.Context(), claims)
			if err != nil {
				// Fail open: a revocation store outage must not lock everyone out
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check token revocation",
						zap.String("jti", claims.ID),
						zap.Error(err))
				}
			} else if revoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
				return
			}
		}

		setClaims(c, claims)

		ctx := c.Request.Context()
		ctx, _ = logger.WithMemberID(ctx, logger.FromContext(ctx), claims.MemberID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("member_id", claims.MemberID),
				zap.String("role", claims.Role),
			)
		}

		c.Next()
	}
}

func extractToken(c *gin.Context, cfg JWTMiddlewareConfig) (string, bool) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		token, ok := strings.CutPrefix(header, BearerPrefix)
		return token, ok && token != ""
	}
	if slices.Contains(cfg.QueryTokenPaths, c.Request.URL.Path) {
		token := c.Query(QueryTokenKey)
		return token, token != ""
	}
	return "", false
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTMemberIDKey, claims.MemberID)
	c.Set(JWTEmailKey, claims.Email)
	c.Set(JWTRoleKey, claims.Role)
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		c.Abort()
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := dto.ErrCodeUnauthorized
	errorMessage := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = dto.ErrCodeTokenExpired
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		errorCode = dto.ErrCodeTokenRevoked
		errorMessage = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidToken):
		errorCode = dto.ErrCodeTokenInvalid
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(errorCode, errorMessage, c.GetString(RequestIDContextKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTMemberID retrieves the member ID from JWT claims in context
func GetJWTMemberID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(JWTMemberIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetJWTRole retrieves the role from JWT claims in context
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present
// and lets the request through either way
func OptionalJWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c, cfg)
		if !ok {
			c.Next()
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		if cfg.Revocation != nil {
			if revoked, err := cfg.Revocation.IsRevoked(c.Request.Context(), claims); err == nil && revoked {
				c.Next()
				return
			}
		}
		setClaims(c, claims)
		c.Next()
	}
}
