package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notes-service/internal/api/dto"
	"github.com/spec-kit/notes-service/internal/service"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

// NotesHandler exposes note CRUD endpoints.
type NotesHandler struct {
	notes *service.NoteService
}

// NewNotesHandler constructs handler.
func NewNotesHandler(noteService *service.NoteService) *NotesHandler {
	return &NotesHandler{notes: noteService}
}

// List handles GET /notes.
func (h *NotesHandler) List(c *fiber.Ctx) error {
	notes, err := h.notes.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, dto.NewNoteResponse(&notes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /notes.
func (h *NotesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.User == "" || req.Title == "" || req.Text == "" {
		return apperrors.NewValidationError("user, title, text required", nil)
	}

	note, err := h.notes.Create(c.Context(), actorFromContext(c), service.NoteCreateInput{
		UserID: req.User,
		Title:  req.Title,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewNoteResponse(note)})
}

// Update handles PATCH /notes.
func (h *NotesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID == "" || req.User == "" || req.Title == "" || req.Text == "" || req.Completed == nil {
		return apperrors.NewValidationError("id, user, title, text, completed required", nil)
	}

	note, err := h.notes.Update(c.Context(), actorFromContext(c), service.NoteUpdateInput{
		ID:        req.ID,
		UserID:    req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: *req.Completed,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNoteResponse(note)})
}

// Delete handles DELETE /notes.
func (h *NotesHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID == "" {
		return apperrors.NewValidationError("note id required", nil)
	}

	note, err := h.notes.Delete(c.Context(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "note " + note.Title + " deleted"})
}
