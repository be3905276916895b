package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/notes-service/internal/auth"
	"github.com/spec-kit/notes-service/internal/domain"
	"github.com/spec-kit/notes-service/internal/events"
	"github.com/spec-kit/notes-service/internal/repository"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

// UserService coordinates account management flows.
type UserService struct {
	users      repository.UserRepository
	notes      repository.NoteRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, notes repository.NoteRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, notes: notes, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// UserCreateInput carries fields for a new account.
type UserCreateInput struct {
	Username string
	Password string
	Roles    []domain.Role
}

// UserUpdateInput carries fields for an account update. Password is optional;
// everything else is required.
type UserUpdateInput struct {
	ID       string
	Username string
	Roles    []domain.Role
	Active   bool
	Password string
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFound("users", nil)
	}
	return users, nil
}

// Create registers a new account after checking username uniqueness.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("duplicate username", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Roles:        input.Roles,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update modifies an account. Deactivating an active account emits a
// user_deactivated event.
func (s *UserService) Update(ctx context.Context, actor events.Actor, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if duplicate, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		if duplicate.ID != user.ID {
			return nil, apperrors.NewConflict("duplicate username", nil)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	wasActive := user.Active
	user.Username = input.Username
	user.Roles = input.Roles
	user.Active = input.Active
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if wasActive && !user.Active && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserDeactivated,
			Actor:     actor,
			Timestamp: time.Now(),
			Payload: events.UserDeactivatedPayload{
				UserID:   user.ID,
				Username: user.Username,
			},
		})
	}
	return user, nil
}

// Delete removes an account unless notes are still assigned to it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	count, err := s.notes.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("user has assigned notes", map[string]any{"notes": count})
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return nil
}
