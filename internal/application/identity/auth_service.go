// Package identity holds sign-up, sign-in and token lifecycle use cases.
package identity

import (
	"context"
	"errors"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/auth"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// DefaultMonthlyAmount is the due assigned at registration
	DefaultMonthlyAmount decimal.Decimal
}

// BootstrapAdmin describes the first admin account
type BootstrapAdmin struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles authentication operations
type AuthService struct {
	members    membership.MemberRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	publisher  shared.EventPublisher
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	members membership.MemberRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		members:    members,
		jwtService: jwtService,
		blacklist:  blacklist,
		publisher:  publisher,
		config:     config,
		logger:     logger,
	}
}

// Register submits a membership application. The account stays Pending
// until an admin approves it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := membership.NormalizeEmail(req.Email)
	exists, err := s.members.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already registered")
	}

	m, err := membership.NewMember(req.Name, email, req.Password, s.config.DefaultMonthlyAmount)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" || req.Address != "" || req.BloodGroup != "" {
		if err := m.UpdateContact(membership.Contact{
			Name:       m.Name,
			Phone:      req.Phone,
			Address:    req.Address,
			BloodGroup: req.BloodGroup,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.members.Save(ctx, m); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already registered")
		}
		return nil, err
	}
	s.logger.Info("Member registered", zap.String("member_id", m.ID.String()))
	s.publish(ctx, m)

	return &RegisterResult{
		Member:  ToMemberInfo(m),
		Message: "Registration received. You can sign in once an admin approves your membership.",
	}, nil
}

// Login authenticates a member and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResult, error) {
	m, err := s.members.FindByEmail(ctx, membership.NormalizeEmail(req.Email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("Login for unknown email")
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !m.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("member_id", m.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if err := checkAccountStatus(m); err != nil {
		s.logger.Warn("Login refused", zap.String("member_id", m.ID.String()), zap.String("status", m.Status.String()))
		return nil, err
	}

	result, err := s.issue(m)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Member logged in", zap.String("member_id", m.ID.String()))
	return result, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	memberID, _ := claims.MemberUUID()
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Account no longer exists")
		}
		return nil, err
	}
	if err := checkAccountStatus(m); err != nil {
		return nil, err
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		return nil, err
	}
	return s.issue(m)
}

// Logout revokes the current access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	if in.AccessJTI != "" {
		if err := s.blacklist.Revoke(ctx, in.AccessJTI, in.AccessTTL); err != nil {
			return err
		}
	}
	if in.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(in.RefreshToken)
		if err == nil && claims.MemberID == in.MemberID.String() {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
				return err
			}
		}
	}
	s.logger.Info("Member logged out", zap.String("member_id", in.MemberID.String()))
	return nil
}

// Me returns the signed-in member
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*MemberInfo, error) {
	m, err := s.members.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToMemberInfo(m)
	return &info, nil
}

// Principal loads the member behind a token for authorization checks
func (s *AuthService) Principal(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	return s.members.FindByID(ctx, id)
}

// IsRevoked reports whether an access token was revoked by logout or by a
// member-wide revocation
func (s *AuthService) IsRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	if err := s.checkRevoked(ctx, claims); err != nil {
		if de, ok := shared.AsDomainError(err); ok && de.Code == "TOKEN_REVOKED" {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// EnsureBootstrapAdmin creates the first admin when no admin exists yet.
// It reports whether an account was created.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	if admin.Email == "" {
		return false, nil
	}
	exists, err := s.members.ExistsAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	taken, err := s.members.ExistsByEmail(ctx, membership.NormalizeEmail(admin.Email))
	if err != nil {
		return false, err
	}
	if taken {
		s.logger.Warn("Bootstrap admin email belongs to an existing member; not promoting it",
			zap.String("email", admin.Email))
		return false, nil
	}

	m, err := membership.NewAdmin(admin.Name, admin.Email, admin.Password)
	if err != nil {
		return false, err
	}
	m.ClearDomainEvents()
	if err := s.members.Save(ctx, m); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("member_id", m.ID.String()))
	return true, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked && claims.IssuedAt != nil {
		revoked, err = s.blacklist.IsMemberRevoked(ctx, claims.MemberID, claims.IssuedAt.Time)
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func (s *AuthService) issue(m *membership.Member) (*TokenResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		MemberID: m.ID,
		Email:    m.Email,
		Role:     m.Role.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Member:                ToMemberInfo(m),
	}, nil
}

func (s *AuthService) publish(ctx context.Context, m *membership.Member) {
	if s.publisher == nil {
		m.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.publisher, m); err != nil {
		s.logger.Error("Failed to publish member events", zap.Error(err))
	}
}

// checkAccountStatus refuses members that have not been approved. Admins
// are always let in.
func checkAccountStatus(m *membership.Member) error {
	if m.IsAdmin() {
		return nil
	}
	switch m.Status {
	case membership.MemberStatusApproved:
		return nil
	case membership.MemberStatusRejected:
		return shared.NewDomainError("ACCOUNT_REJECTED", "Your membership application was rejected")
	default:
		return shared.NewDomainError("ACCOUNT_PENDING", "Your membership is awaiting admin approval")
	}
}
