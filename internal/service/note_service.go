package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/notes-service/internal/domain"
	"github.com/spec-kit/notes-service/internal/events"
	"github.com/spec-kit/notes-service/internal/repository"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

// NoteService coordinates note CRUD flows.
type NoteService struct {
	notes      repository.NoteRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewNoteService builds the service.
func NewNoteService(notes repository.NoteRepository, users repository.UserRepository, dispatcher events.Dispatcher) *NoteService {
	return &NoteService{notes: notes, users: users, dispatcher: dispatcher}
}

// NoteCreateInput carries fields for a new note.
type NoteCreateInput struct {
	UserID string
	Title  string
	Text   string
}

// NoteUpdateInput carries fields for a note update.
type NoteUpdateInput struct {
	ID        string
	UserID    string
	Title     string
	Text      string
	Completed bool
}

// List returns all notes with their assignee usernames.
func (s *NoteService) List(ctx context.Context) ([]domain.Note, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, apperrors.NewNotFound("notes", nil)
	}
	return notes, nil
}

// Create stores a new note. Titles are unique across all notes.
func (s *NoteService) Create(ctx context.Context, actor events.Actor, input NoteCreateInput) (*domain.Note, error) {
	assignee, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	if _, err := s.notes.GetByTitle(ctx, input.Title); err == nil {
		return nil, apperrors.NewConflict("duplicate note title", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	note := &domain.Note{
		UserID: input.UserID,
		Title:  input.Title,
		Text:   input.Text,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	// the insert returns generated columns only; the assignee is already loaded
	note.Username = assignee.Username

	s.publish(ctx, events.EventNoteCreated, actor, events.NoteCreatedPayload{
		NoteID:     note.ID,
		TicketNum:  note.TicketNum,
		AssigneeID: note.UserID,
		Title:      note.Title,
	})
	return note, nil
}

// Update modifies a note, emitting completion and reassignment events when
// those fields change.
func (s *NoteService) Update(ctx context.Context, actor events.Actor, input NoteUpdateInput) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("note", nil)
		}
		return nil, err
	}

	if duplicate, err := s.notes.GetByTitle(ctx, input.Title); err == nil {
		if duplicate.ID != note.ID {
			return nil, apperrors.NewConflict("duplicate note title", nil)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	oldAssignee := note.UserID
	wasCompleted := note.Completed
	note.UserID = input.UserID
	note.Username = assignee.Username
	note.Title = input.Title
	note.Text = input.Text
	note.Completed = input.Completed

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	if !wasCompleted && note.Completed {
		s.publish(ctx, events.EventNoteCompleted, actor, events.NoteCompletedPayload{
			NoteID:    note.ID,
			TicketNum: note.TicketNum,
			Completed: true,
		})
	}
	if oldAssignee != note.UserID {
		s.publish(ctx, events.EventNoteReassigned, actor, events.NoteReassignedPayload{
			NoteID:        note.ID,
			TicketNum:     note.TicketNum,
			OldAssigneeID: oldAssignee,
			NewAssigneeID: note.UserID,
		})
	}
	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("note", nil)
		}
		return nil, err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
