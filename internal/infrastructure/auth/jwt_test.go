package auth

import (
	"context"
	"testing"
	"time"

	"github.com/comfund/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "access-secret-for-tests-0123456789",
		RefreshSecret:          "refresh-secret-for-tests-0123456789",
		Issuer:                 "comfund-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	sub := Subject{MemberID: uuid.New(), Email: "rahim@example.com", Role: "Member"}

	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	id, err := claims.MemberUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.MemberID, id)
	assert.Equal(t, "Member", claims.Role)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL().Seconds(), 5)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Email)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	pair, err := svc.GenerateTokenPair(Subject{MemberID: uuid.New()})
	require.NoError(t, err)

	t.Run("refresh used as access", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong type with shared secret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.RefreshSecret = ""
		shared := NewJWTService(cfg)
		p, err := shared.GenerateTokenPair(Subject{MemberID: uuid.New()})
		require.NoError(t, err)
		_, err = shared.ValidateAccessToken(p.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService(testJWTConfig())
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		p, err := past.GenerateTokenPair(Subject{MemberID: uuid.New()})
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Issuer = "someone-else"
		p, err := NewJWTService(cfg).GenerateTokenPair(Subject{MemberID: uuid.New()})
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{MemberID: uuid.NewString(), TokenType: TokenTypeAccess})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, bl.Revoke(ctx, "jti-expired", time.Nanosecond))
	require.NoError(t, bl.Revoke(ctx, "jti-zero", 0))
	time.Sleep(time.Millisecond)

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	for _, jti := range []string{"jti-expired", "jti-zero", "unknown"} {
		revoked, err = bl.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked, jti)
	}

	issued := time.Now().Add(-time.Minute)
	require.NoError(t, bl.RevokeMember(ctx, "m1", time.Hour))
	revoked, err = bl.IsMemberRevoked(ctx, "m1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsMemberRevoked(ctx, "m1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)
}
