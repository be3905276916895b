package dto

import (
	"time"

	"github.com/spec-kit/notes-service/internal/domain"
)

// CreateUserRequest payload for POST /users.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// UpdateUserRequest payload for PATCH /users. The target is addressed by id
// in the body. Password is optional; when empty the hash is left untouched.
type UpdateUserRequest struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
	Password string   `json:"password"`
}

// DeleteUserRequest payload for DELETE /users.
type DeleteUserRequest struct {
	ID string `json:"id"`
}

// UserResponse is the account representation returned to clients. Password
// hashes never leave the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Roles:     domain.RolesToStrings(user.Roles),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
