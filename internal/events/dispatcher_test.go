package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventNoteCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	d.Subscribe(EventNoteCompleted, func(_ context.Context, _ Event) error {
		t.Fatal("handler for unrelated event type invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventNoteCreated,
		Actor:     Actor{Username: "alice"},
		Timestamp: time.Now(),
		Payload:   NoteCreatedPayload{NoteID: "note-1", TicketNum: 500},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "evt-1", got[0].ID)
	assert.Equal(t, "alice", got[0].Actor.Username)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	var secondCalled bool
	d.Subscribe(EventUserDeactivated, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventUserDeactivated, func(_ context.Context, _ Event) error {
		secondCalled = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserDeactivated})
	require.NoError(t, err)
	assert.True(t, secondCalled)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventNoteReassigned}))
}
