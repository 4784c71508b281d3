package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesTypedSubscribers(t *testing.T) {
	p := NewPublisher()
	got := make(chan Event, 1)
	p.Subscribe(EventSessionUpdated, func(e Event) { got <- e })

	p.Publish(Event{Type: EventSessionUpdated, GameID: "room"})

	ev := recv(t, got)
	assert.Equal(t, "room", ev.GameID)
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	p := NewPublisher()
	got := make(chan Event, 1)
	p.Subscribe(EventGameConcluded, func(e Event) { got <- e })

	p.Publish(Event{Type: EventSessionUpdated, GameID: "room"})

	select {
	case ev := <-got:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	p := NewPublisher()
	got := make(chan Event, 2)
	p.SubscribeAll(func(e Event) { got <- e })

	p.Publish(Event{Type: EventSessionUpdated})
	p.Publish(Event{Type: EventConnectionClosed})

	types := map[EventType]bool{recv(t, got).Type: true, recv(t, got).Type: true}
	require.Len(t, types, 2)
	assert.True(t, types[EventSessionUpdated])
	assert.True(t, types[EventConnectionClosed])
}
