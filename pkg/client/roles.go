package client

import (
	jwt "github.com/golang-jwt/jwt/v5"
)

// Role names as they appear in token claims.
const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleAdmin    = "Admin"
)

// Claims is the decoded identity payload of an access token. It is purely
// informational for gating UI decisions; the server re-verifies every token.
type Claims struct {
	Username string
	Roles    []string
}

type accessPayload struct {
	UserInfo struct {
		Username string   `json:"username"`
		Roles    []string `json:"roles"`
	} `json:"UserInfo"`
	jwt.RegisteredClaims
}

// DecodeClaims extracts claims from an access token without verifying the
// signature. Returns false for an empty or undecodable token.
func DecodeClaims(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}
	var payload accessPayload
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &payload); err != nil {
		return nil, false
	}
	return &Claims{
		Username: payload.UserInfo.Username,
		Roles:    payload.UserInfo.Roles,
	}, true
}

// HasAnyRole reports whether the claims hold at least one of the allowed
// roles. No roles means never allowed.
func (c *Claims) HasAnyRole(allowed ...string) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsManager reports whether the Manager role is held.
func (c *Claims) IsManager() bool {
	return c.HasAnyRole(RoleManager)
}

// IsAdmin reports whether the Admin role is held.
func (c *Claims) IsAdmin() bool {
	return c.HasAnyRole(RoleAdmin)
}

// Status returns the highest role held, defaulting to Employee.
func (c *Claims) Status() string {
	switch {
	case c.IsAdmin():
		return RoleAdmin
	case c.IsManager():
		return RoleManager
	default:
		return RoleEmployee
	}
}
