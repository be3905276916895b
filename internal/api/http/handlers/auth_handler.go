package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notes-service/internal/api/dto"
	"github.com/spec-kit/notes-service/internal/service"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "jwt"

// AuthHandler exposes the login, refresh, and logout endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: authService, cookieSecure: cookieSecure}
}

// Login handles POST /auth. On success the access token goes to the body and
// the refresh token into the httpOnly cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("all fields are required", nil)
	}

	pair, err := h.auth.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.auth.RefreshTokenMaxAge().Seconds()),
		Expires:  pair.RefreshExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})

	return c.JSON(dto.AccessTokenResponse{AccessToken: pair.AccessToken})
}

// Refresh handles GET /auth/refresh. Requires the refresh cookie; a missing
// cookie is unauthorized while a bad one is forbidden, so clients can tell a
// lost session from an expired one.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(RefreshCookieName)
	if refreshToken == "" {
		return apperrors.NewUnauthorized("missing refresh cookie")
	}

	accessToken, _, err := h.auth.Refresh(c.Context(), refreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.AccessTokenResponse{AccessToken: accessToken})
}

// Logout handles POST /auth/logout. Idempotent: without a cookie it already
// succeeded. Tokens are stateless, so logout only clears the cookie; a
// refresh token captured beforehand stays valid until it expires.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if c.Cookies(RefreshCookieName) == "" {
		return c.SendStatus(http.StatusNoContent)
	}

	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(dto.MessageResponse{Message: "Cookie cleared"})
}
