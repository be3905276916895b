package dto

import (
	"time"

	"github.com/spec-kit/notes-service/internal/domain"
)

// CreateNoteRequest payload for POST /notes.
type CreateNoteRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// UpdateNoteRequest payload for PATCH /notes.
type UpdateNoteRequest struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed *bool  `json:"completed"`
}

// DeleteNoteRequest payload for DELETE /notes.
type DeleteNoteRequest struct {
	ID string `json:"id"`
}

// NoteResponse is the note representation returned to clients.
type NoteResponse struct {
	ID        string    `json:"id"`
	Ticket    int64     `json:"ticket"`
	User      string    `json:"user"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNoteResponse maps a domain note.
func NewNoteResponse(note *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Ticket:    note.TicketNum,
		User:      note.UserID,
		Username:  note.Username,
		Title:     note.Title,
		Text:      note.Text,
		Completed: note.Completed,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
