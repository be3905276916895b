package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/notes-service/internal/domain"
	"github.com/spec-kit/notes-service/internal/events"
	"github.com/spec-kit/notes-service/internal/repository/repositorytest"
)

type noteFixture struct {
	svc        *NoteService
	users      *repositorytest.UserRepo
	notes      *repositorytest.NoteRepo
	dispatcher events.Dispatcher
	alice      *domain.User
	bob        *domain.User
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	users := repositorytest.NewUserRepo()
	notes := repositorytest.NewNoteRepo(users)
	dispatcher := events.NewInMemoryDispatcher()
	userSvc := NewUserService(users, notes, dispatcher, bcrypt.MinCost)

	alice, err := userSvc.Create(context.Background(), UserCreateInput{Username: "alice", Password: "pw", Roles: []domain.Role{domain.RoleEmployee}})
	require.NoError(t, err)
	bob, err := userSvc.Create(context.Background(), UserCreateInput{Username: "bob", Password: "pw", Roles: []domain.Role{domain.RoleEmployee}})
	require.NoError(t, err)

	return &noteFixture{
		svc:        NewNoteService(notes, users, dispatcher),
		users:      users,
		notes:      notes,
		dispatcher: dispatcher,
		alice:      alice,
		bob:        bob,
	}
}

func TestCreateNoteAssignsSequentialTickets(t *testing.T) {
	f := newNoteFixture(t)
	actor := events.Actor{Username: "alice"}

	first, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "third floor"})
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "order toner", Text: "black, two boxes"})
	require.NoError(t, err)

	assert.Equal(t, int64(500), first.TicketNum)
	assert.Equal(t, int64(501), second.TicketNum)
}

func TestCreateNoteRejectsDuplicateTitle(t *testing.T) {
	f := newNoteFixture(t)
	actor := events.Actor{Username: "alice"}

	_, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "third floor"})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.bob.ID, Title: "fix printer", Text: "again"})
	requireStatus(t, err, 409)
}

func TestCreateNoteRejectsUnknownAssignee(t *testing.T) {
	f := newNoteFixture(t)

	_, err := f.svc.Create(context.Background(), events.Actor{}, NoteCreateInput{UserID: "missing", Title: "t", Text: "x"})
	requireStatus(t, err, 404)
}

func TestCreateNoteEmitsEvent(t *testing.T) {
	f := newNoteFixture(t)

	var captured []events.Event
	f.dispatcher.Subscribe(events.EventNoteCreated, func(_ context.Context, event events.Event) error {
		captured = append(captured, event)
		return nil
	})

	_, err := f.svc.Create(context.Background(), events.Actor{Username: "alice"}, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "third floor"})
	require.NoError(t, err)

	require.Len(t, captured, 1)
	payload, ok := captured[0].Payload.(events.NoteCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(500), payload.TicketNum)
}

func TestUpdateNoteCompletionAndReassignmentEvents(t *testing.T) {
	f := newNoteFixture(t)
	actor := events.Actor{Username: "alice"}

	note, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "third floor"})
	require.NoError(t, err)

	var completed, reassigned int
	f.dispatcher.Subscribe(events.EventNoteCompleted, func(_ context.Context, _ events.Event) error {
		completed++
		return nil
	})
	f.dispatcher.Subscribe(events.EventNoteReassigned, func(_ context.Context, _ events.Event) error {
		reassigned++
		return nil
	})

	updated, err := f.svc.Update(context.Background(), actor, NoteUpdateInput{
		ID: note.ID, UserID: f.bob.ID, Title: "fix printer", Text: "third floor", Completed: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, reassigned)

	// no further change, no further events
	_, err = f.svc.Update(context.Background(), actor, NoteUpdateInput{
		ID: note.ID, UserID: f.bob.ID, Title: "fix printer", Text: "third floor", Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, reassigned)
}

func TestUpdateNoteDuplicateTitle(t *testing.T) {
	f := newNoteFixture(t)
	actor := events.Actor{Username: "alice"}

	_, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "x"})
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "order toner", Text: "y"})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), actor, NoteUpdateInput{
		ID: second.ID, UserID: f.alice.ID, Title: "fix printer", Text: "y", Completed: false,
	})
	requireStatus(t, err, 409)
}

func TestCreateAndUpdateCarryAssigneeUsername(t *testing.T) {
	f := newNoteFixture(t)
	actor := events.Actor{Username: "alice"}

	created, err := f.svc.Create(context.Background(), actor, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "third floor"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)

	reassigned, err := f.svc.Update(context.Background(), actor, NoteUpdateInput{
		ID: created.ID, UserID: f.bob.ID, Title: "fix printer", Text: "third floor", Completed: false,
	})
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, reassigned.UserID)
	assert.Equal(t, "bob", reassigned.Username)
}

func TestListNotesResolvesUsernames(t *testing.T) {
	f := newNoteFixture(t)

	_, err := f.svc.Create(context.Background(), events.Actor{}, NoteCreateInput{UserID: f.bob.ID, Title: "fix printer", Text: "x"})
	require.NoError(t, err)

	notes, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bob", notes[0].Username)
}

func TestListNotesEmpty(t *testing.T) {
	f := newNoteFixture(t)
	_, err := f.svc.List(context.Background())
	requireStatus(t, err, 404)
}

func TestDeleteNote(t *testing.T) {
	f := newNoteFixture(t)

	note, err := f.svc.Create(context.Background(), events.Actor{}, NoteCreateInput{UserID: f.alice.ID, Title: "fix printer", Text: "x"})
	require.NoError(t, err)

	deleted, err := f.svc.Delete(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, deleted.ID)

	_, err = f.svc.Delete(context.Background(), note.ID)
	requireStatus(t, err, 404)
}
