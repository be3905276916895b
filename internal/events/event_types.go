package events

import (
	"time"

	"github.com/spec-kit/notes-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventNoteCreated     EventType = "note_created"
	EventNoteCompleted   EventType = "note_completed"
	EventNoteReassigned  EventType = "note_reassigned"
	EventUserDeactivated EventType = "user_deactivated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string        `json:"username"`
	Roles    []domain.Role `json:"roles,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NoteCreatedPayload payload.
type NoteCreatedPayload struct {
	NoteID     string `json:"note_id"`
	TicketNum  int64  `json:"ticket_num"`
	AssigneeID string `json:"assignee_id"`
	Title      string `json:"title"`
}

// NoteCompletedPayload payload.
type NoteCompletedPayload struct {
	NoteID    string `json:"note_id"`
	TicketNum int64  `json:"ticket_num"`
	Completed bool   `json:"completed"`
}

// NoteReassignedPayload payload.
type NoteReassignedPayload struct {
	NoteID        string `json:"note_id"`
	TicketNum     int64  `json:"ticket_num"`
	OldAssigneeID string `json:"old_assignee_id"`
	NewAssigneeID string `json:"new_assignee_id"`
}

// UserDeactivatedPayload payload.
type UserDeactivatedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
