package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notes-service/internal/domain"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the identity attached to a request after token validation.
// It is built purely from access token claims; the guard never touches the
// user store.
type Principal struct {
	Username string
	Roles    []domain.Role
}

// HasAnyRole reports whether the principal holds one of the given roles.
func (p *Principal) HasAnyRole(allowed ...domain.Role) bool {
	for _, have := range p.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Guard validates bearer access tokens on protected routes.
type Guard struct {
	tokens *TokenManager
}

// NewGuard constructs the middleware.
func NewGuard(tokens *TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// Handle enforces authentication. A missing or malformed Authorization header
// is unauthorized; a present-but-invalid token (bad signature, expired) is
// forbidden. Clients rely on the distinction to decide whether a silent
// refresh is worth attempting.
func (g *Guard) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := g.tokens.ParseAccessToken(parts[1])
	if err != nil {
		return apperrors.NewForbidden("invalid or expired token")
	}

	c.Locals(principalKey, &Principal{
		Username: claims.UserInfo.Username,
		Roles:    claims.UserInfo.Roles,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
