package client

import (
	"context"
	"net/http"
	"time"
)

// User is the wire representation of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is the wire representation of a note.
type Note struct {
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

type usersEnvelope struct {
	Data []User `json:"data"`
}

type notesEnvelope struct {
	Data []Note `json:"data"`
}

type noteEnvelope struct {
	Data Note `json:"data"`
}

// ListUsers fetches all accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var resp usersEnvelope
	if err := c.Do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListNotes fetches all notes.
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var resp notesEnvelope
	if err := c.Do(ctx, http.MethodGet, "/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateNote stores a new note assigned to the given user id.
func (c *Client) CreateNote(ctx context.Context, userID, title, text string) (*Note, error) {
	body := map[string]string{"user": userID, "title": title, "text": text}
	var resp noteEnvelope
	if err := c.Do(ctx, http.MethodPost, "/notes", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CompleteNote marks a note completed, leaving other fields untouched.
func (c *Client) CompleteNote(ctx context.Context, note *Note) (*Note, error) {
	completed := true
	body := map[string]any{
		"id":        note.ID,
		"user":      note.User,
		"title":     note.Title,
		"text":      note.Text,
		"completed": &completed,
	}
	var resp noteEnvelope
	if err := c.Do(ctx, http.MethodPatch, "/notes", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteNote removes a note by id.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/notes", map[string]string{"id": id}, nil)
}
