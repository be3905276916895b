package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/notes-service/internal/domain"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestManager()
	roles := []domain.Role{domain.RoleEmployee, domain.RoleManager}

	token, expiresAt, err := tm.GenerateAccessToken("alice", roles)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserInfo.Username)
	assert.Equal(t, roles, claims.UserInfo.Roles)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, expiresAt, err := tm.GenerateRefreshToken("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	tm := newTestManager()

	accessToken, _, err := tm.GenerateAccessToken("alice", []domain.Role{domain.RoleEmployee})
	require.NoError(t, err)
	refreshToken, _, err := tm.GenerateRefreshToken("alice")
	require.NoError(t, err)

	_, err = tm.ParseRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = tm.ParseAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	tm := newTestManager()

	claims := &AccessClaims{
		UserInfo: UserInfo{Username: "alice", Roles: []domain.Role{domain.RoleEmployee}},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-16 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = tm.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsTampered(t *testing.T) {
	tm := newTestManager()

	token, _, err := tm.GenerateAccessToken("alice", []domain.Role{domain.RoleEmployee})
	require.NoError(t, err)

	_, err = tm.ParseAccessToken(token + "x")
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	other := NewTokenManager("different-secret", "refresh-secret", time.Minute, time.Hour)
	token, _, err := other.GenerateAccessToken("alice", []domain.Role{domain.RoleEmployee})
	require.NoError(t, err)

	_, err = newTestManager().ParseAccessToken(token)
	assert.Error(t, err)
}
