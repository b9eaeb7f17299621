package identity

import (
	"time"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/google/uuid"
)

// RegisterRequest is a membership application
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Email      string `json:"email" binding:"required,email,max=200"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
	Phone      string `json:"phone" binding:"max=30"`
	Address    string `json:"address" binding:"max=300"`
	BloodGroup string `json:"bloodGroup" binding:"max=5"`
}

// LoginRequest carries member credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	MemberID     uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string
}

// MemberInfo is the signed-in member as shown to the client
type MemberInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Position    string    `json:"position"`
	Status      string    `json:"status"`
	Approved    bool      `json:"approved"`
	Permissions []string  `json:"permissions"`
}

// TokenResult is returned by login and refresh
type TokenResult struct {
	AccessToken           string     `json:"accessToken"`
	RefreshToken          string     `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time  `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time  `json:"refreshTokenExpiresAt"`
	TokenType             string     `json:"tokenType"`
	Member                MemberInfo `json:"member"`
}

// RegisterResult is returned after a successful application
type RegisterResult struct {
	Member  MemberInfo `json:"member"`
	Message string     `json:"message"`
}

// ToMemberInfo converts a domain member
func ToMemberInfo(m *membership.Member) MemberInfo {
	return MemberInfo{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role.String(),
		Position:    m.Position,
		Status:      m.Status.String(),
		Approved:    m.Approved,
		Permissions: m.GrantedPermissions(),
	}
}
