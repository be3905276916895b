package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/notes-service/internal/auth"
	"github.com/spec-kit/notes-service/internal/config"
	"github.com/spec-kit/notes-service/internal/domain"
	"github.com/spec-kit/notes-service/internal/repository"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

// AuthService coordinates the login and token refresh flows. Tokens are
// stateless; nothing about a session is stored server-side.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users: users,
		tokenMgr: auth.NewTokenManager(
			cfg.AccessTokenSecret,
			cfg.RefreshTokenSecret,
			cfg.AccessTokenTTL(),
			cfg.RefreshTokenTTL(),
		),
	}
}

// Authenticate validates credentials and mints the token pair. Unknown
// username, wrong password, and deactivated account all collapse into the
// same invalid-credentials answer so login probing learns nothing.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	accessToken, accessExp, err := s.tokenMgr.GenerateAccessToken(user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.tokenMgr.GenerateRefreshToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The user
// record is re-resolved so the new token carries the account's current roles,
// and a token for a since-deleted account is rejected. The refresh token
// itself is not rotated; a stolen one stays valid until natural expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.NewForbidden("invalid or expired refresh token")
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("user no longer exists")
		}
		return "", time.Time{}, err
	}

	return s.tokenMgr.GenerateAccessToken(user.Username, user.Roles)
}

// RefreshTokenMaxAge returns the cookie Max-Age for the refresh token.
func (s *AuthService) RefreshTokenMaxAge() time.Duration {
	return s.tokenMgr.RefreshTTL()
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
