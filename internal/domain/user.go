package domain

import (
	"fmt"
	"time"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// ParseRole validates a role string against the known set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// ParseRoles validates a list of role strings. At least one role is required.
func ParseRoles(values []string) ([]Role, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one role required")
	}
	roles := make([]Role, 0, len(values))
	for _, v := range values {
		role, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// RolesToStrings converts roles for serialization.
func RolesToStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// User is the domain model for accounts that log in and get assigned notes.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(allowed ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}
