// Package repositorytest provides in-memory repository implementations for
// exercising services and handlers without a database.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/notes-service/internal/domain"
	"github.com/spec-kit/notes-service/internal/repository"
)

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

var _ repository.UserRepository = (*UserRepo)(nil)

// NewUserRepo builds an empty repo.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return fmt.Errorf("duplicate username %q", user.Username)
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// NoteRepo is an in-memory repository.NoteRepository. Assignee usernames are
// resolved through the attached UserRepo on reads, mirroring the SQL join.
type NoteRepo struct {
	mu         sync.Mutex
	notes      map[string]*domain.Note
	users      *UserRepo
	seq        int
	nextTicket int64
}

var _ repository.NoteRepository = (*NoteRepo)(nil)

// NewNoteRepo builds an empty repo joined against the given user repo.
func NewNoteRepo(users *UserRepo) *NoteRepo {
	return &NoteRepo{notes: make(map[string]*domain.Note), users: users, nextTicket: 500}
}

func (r *NoteRepo) Create(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	note.ID = fmt.Sprintf("note-%d", r.seq)
	note.TicketNum = r.nextTicket
	r.nextTicket++
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *NoteRepo) Update(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[note.ID]; !ok {
		return pgx.ErrNoRows
	}
	note.UpdatedAt = time.Now()
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *NoteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.notes, id)
	return nil
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	r.mu.Lock()
	note, ok := r.notes[id]
	if !ok {
		r.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	clone := *note
	r.mu.Unlock()
	r.resolveUsername(ctx, &clone)
	return &clone, nil
}

func (r *NoteRepo) GetByTitle(ctx context.Context, title string) (*domain.Note, error) {
	r.mu.Lock()
	for _, note := range r.notes {
		if note.Title == title {
			clone := *note
			r.mu.Unlock()
			r.resolveUsername(ctx, &clone)
			return &clone, nil
		}
	}
	r.mu.Unlock()
	return nil, pgx.ErrNoRows
}

func (r *NoteRepo) List(ctx context.Context) ([]domain.Note, error) {
	r.mu.Lock()
	notes := make([]domain.Note, 0, len(r.notes))
	for _, note := range r.notes {
		notes = append(notes, *note)
	}
	r.mu.Unlock()
	sort.Slice(notes, func(i, j int) bool { return notes[i].TicketNum < notes[j].TicketNum })
	for i := range notes {
		r.resolveUsername(ctx, &notes[i])
	}
	return notes, nil
}

func (r *NoteRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, note := range r.notes {
		if note.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *NoteRepo) resolveUsername(ctx context.Context, note *domain.Note) {
	if r.users == nil {
		return
	}
	if user, err := r.users.GetByID(ctx, note.UserID); err == nil {
		note.Username = user.Username
	}
}
