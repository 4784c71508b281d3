// Package events is the in-process pub/sub used to fan session changes out to transports
package events

import "sync"

// EventType represents the type of event
type EventType string

// Define event types
const (
	EventSessionUpdated   EventType = "SESSION_UPDATED"
	EventSideDuelStarted  EventType = "SIDE_DUEL_STARTED"
	EventSideDuelResolved EventType = "SIDE_DUEL_RESOLVED"
	EventGameConcluded    EventType = "GAME_CONCLUDED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"

	allEvents EventType = "*"
)

// Event represents an event in the system
type Event struct {
	Type    EventType
	GameID  string // Optional, can be empty for non-game events
	Payload interface{}
}

// NoticePayload carries a human-readable message about a session
type NoticePayload struct {
	Message string
}

// ConnectionClosedPayload identifies the closed connection and the session it was in
type ConnectionClosedPayload struct {
	ConnectionID string
	GameID       string
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.Subscribe(allEvents, handler)
}

// Publish broadcasts an event to its subscribers and to the "all events" handlers.
// Handlers run on their own goroutines; Publish never blocks on them.
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := p.subscribers[event.Type]
	allHandlers := p.subscribers[allEvents]
	p.mu.RUnlock()

	for _, handler := range handlers {
		go handler(event)
	}

	for _, handler := range allHandlers {
		go handler(event)
	}
}
