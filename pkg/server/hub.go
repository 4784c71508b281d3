package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/game"
	"github.com/tecu23/sideduel-server/pkg/manager"
	"github.com/tecu23/sideduel-server/pkg/messages"
)

// SessionService is the part of the session manager the hub drives
type SessionService interface {
	Join(ctx context.Context, sessionID, playerID, name string) (manager.JoinResult, error)
	Leave(ctx context.Context, sessionID, playerID string) error
	MoveMain(ctx context.Context, sessionID, playerID string, move rules.Move) (manager.MoveResult, error)
	MoveSide(ctx context.Context, sessionID, playerID string, move rules.Move) (manager.MoveResult, error)
	Resign(ctx context.Context, sessionID, playerID string) (manager.ResignResult, error)
	OfferDraw(ctx context.Context, sessionID, playerID string) (manager.DrawOfferResult, error)
	DeclineDraw(ctx context.Context, sessionID, playerID string) (manager.DrawDeclineResult, error)
	Snapshot(ctx context.Context, sessionID string) (game.Snapshot, error)
}

// Hub keeps track of all active connections and the room each one is in.
// Requests are handled on the sender's read goroutine; session changes come back
// through the publisher and are fanned out to the room.
type Hub struct {
	mu          sync.RWMutex                    // Protects connections and rooms
	connections map[*Connection]bool            // Registered connections
	rooms       map[string]map[*Connection]bool // Session id to its connections

	register   chan *Connection // Incoming registration
	unregister chan *Connection // Incoming unregistration
	done       chan struct{}

	sessions  SessionService
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHub creates a new hub and subscribes it to session events
func NewHub(sessions SessionService, publisher *events.Publisher, logger *zap.Logger) *Hub {
	h := &Hub{
		connections: make(map[*Connection]bool),
		rooms:       make(map[string]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
		sessions:    sessions,
		publisher:   publisher,
		logger:      logger,
	}

	publisher.Subscribe(events.EventSessionUpdated, h.onSessionUpdated)
	publisher.Subscribe(events.EventSideDuelStarted, h.onNotice)
	publisher.Subscribe(events.EventSideDuelResolved, h.onNotice)
	publisher.Subscribe(events.EventGameConcluded, h.onNotice)
	publisher.Subscribe(events.EventConnectionClosed, h.onConnectionClosed)

	return h
}

// Run is the main execution of the hub. It returns when ctx is cancelled, after
// closing every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case <-ctx.Done():
			h.shutdown()
			return nil
		}
	}
}

func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.close()
	}
}

func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	h.connections[conn] = true
	count := len(h.connections)
	h.mu.Unlock()

	h.logger.Debug("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("connections", count),
	)

	conn.SendJSON(messages.OutboundMessage{
		Event:   messages.EventConnected,
		Payload: messages.ConnectedPayload{ConnectionID: conn.ID.String()},
	})
}

// unregisterConnection drops the connection and vacates its seat, which in turn
// broadcasts the new state to the rest of the room
func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	_, ok := h.connections[conn]
	if ok {
		delete(h.connections, conn)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	conn.close()

	gameID := conn.GameID()
	if gameID == "" {
		return
	}

	h.leaveRoom(conn, gameID)
	if err := h.sessions.Leave(context.Background(), gameID, conn.ID.String()); err != nil {
		h.logger.Warn("leave on disconnect failed",
			zap.String("session_id", gameID),
			zap.String("connection_id", conn.ID.String()),
			zap.Error(err),
		)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		conns = append(conns, conn)
	}
	h.connections = make(map[*Connection]bool)
	h.rooms = make(map[string]map[*Connection]bool)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.close()
		conn.ws.Close()
	}

	h.logger.Info("hub stopped", zap.Int("closed_connections", len(conns)))
}

func (h *Hub) joinRoom(conn *Connection, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[gameID]
	if !ok {
		room = make(map[*Connection]bool)
		h.rooms[gameID] = room
	}
	room[conn] = true
}

func (h *Hub) leaveRoom(conn *Connection, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[gameID]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(h.rooms, gameID)
	}
}

func (h *Hub) members(gameID string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[gameID]
	conns := make([]*Connection, 0, len(room))
	for conn := range room {
		conns = append(conns, conn)
	}
	return conns
}

func (h *Hub) broadcast(gameID string, msg messages.OutboundMessage) {
	for _, conn := range h.members(gameID) {
		conn.SendJSON(msg)
	}
}

func (h *Hub) onSessionUpdated(event events.Event) {
	snap, err := h.sessions.Snapshot(context.Background(), event.GameID)
	if err != nil {
		h.logger.Debug("state sync skipped", zap.String("session_id", event.GameID), zap.Error(err))
		return
	}

	h.broadcast(event.GameID, messages.OutboundMessage{Event: messages.EventStateSync, Payload: snap})
}

func (h *Hub) onNotice(event events.Event) {
	notice, ok := event.Payload.(events.NoticePayload)
	if !ok {
		return
	}

	h.broadcast(event.GameID, messages.OutboundMessage{
		Event:   messages.EventNotice,
		Payload: messages.NoticePayload{GameID: event.GameID, Message: notice.Message},
	})
}

func (h *Hub) onConnectionClosed(event events.Event) {
	if p, ok := event.Payload.(events.ConnectionClosedPayload); ok {
		h.logger.Info("connection closed",
			zap.String("connection_id", p.ConnectionID),
			zap.String("session_id", p.GameID),
		)
	}
}

// handleInbound decodes and routes one client request, answering with an ACK
func (h *Hub) handleInbound(conn *Connection, msg messages.InboundMessage) {
	ctx := context.Background()
	playerID := conn.ID.String()

	var (
		result interface{}
		err    error
	)

	switch msg.Event {
	case messages.EventJoin:
		var p messages.JoinPayload
		if err = msg.Decode(&p); err != nil {
			break
		}
		result, err = h.join(ctx, conn, p)

	case messages.EventMoveMain, messages.EventMoveSide:
		var p messages.MovePayload
		if err = msg.Decode(&p); err != nil {
			break
		}
		if msg.Event == messages.EventMoveMain {
			result, err = h.sessions.MoveMain(ctx, p.GameID, playerID, p.Move)
		} else {
			result, err = h.sessions.MoveSide(ctx, p.GameID, playerID, p.Move)
		}

	case messages.EventResign, messages.EventOfferDraw, messages.EventDeclineDraw, messages.EventLeave:
		var p messages.GamePayload
		if err = msg.Decode(&p); err != nil {
			break
		}
		switch msg.Event {
		case messages.EventResign:
			result, err = h.sessions.Resign(ctx, p.GameID, playerID)
		case messages.EventOfferDraw:
			result, err = h.sessions.OfferDraw(ctx, p.GameID, playerID)
		case messages.EventDeclineDraw:
			result, err = h.sessions.DeclineDraw(ctx, p.GameID, playerID)
		default:
			err = h.leave(ctx, conn, p.GameID)
		}

	default:
		err = fmt.Errorf("unknown event %q", msg.Event)
	}

	if err != nil {
		h.logFailure(conn, msg, err)
		conn.SendJSON(messages.Nack(msg.RequestID, publicError(err)))
		return
	}

	conn.SendJSON(messages.Ack(msg.RequestID, result))
}

func (h *Hub) join(ctx context.Context, conn *Connection, p messages.JoinPayload) (manager.JoinResult, error) {
	if prev := conn.GameID(); prev != "" && prev != p.GameID {
		if err := h.leave(ctx, conn, prev); err != nil && !errors.Is(err, manager.ErrSessionNotFound) {
			return manager.JoinResult{}, err
		}
	}

	name := p.Name
	if name == "" {
		name = "Guest-" + conn.ID.String()[:8]
	}

	res, err := h.sessions.Join(ctx, p.GameID, conn.ID.String(), name)
	if err != nil {
		return manager.JoinResult{}, err
	}

	conn.setGameID(p.GameID)
	h.joinRoom(conn, p.GameID)

	// The room broadcast may race the room membership; the joiner always gets a state.
	if snap, err := h.sessions.Snapshot(ctx, p.GameID); err == nil {
		conn.SendJSON(messages.OutboundMessage{Event: messages.EventStateSync, Payload: snap})
	}

	return res, nil
}

func (h *Hub) leave(ctx context.Context, conn *Connection, gameID string) error {
	h.leaveRoom(conn, gameID)
	if conn.GameID() == gameID {
		conn.setGameID("")
	}
	return h.sessions.Leave(ctx, gameID, conn.ID.String())
}

func (h *Hub) logFailure(conn *Connection, msg messages.InboundMessage, err error) {
	fields := []zap.Field{
		zap.String("connection_id", conn.ID.String()),
		zap.String("event", msg.Event),
		zap.String("request_id", msg.RequestID),
		zap.Error(err),
	}

	var fault *manager.InternalFaultError
	if errors.As(err, &fault) {
		h.logger.Error("request failed", fields...)
		return
	}
	h.logger.Debug("request rejected", fields...)
}

// publicError hides internal faults from clients
func publicError(err error) error {
	var fault *manager.InternalFaultError
	if errors.As(err, &fault) {
		return errors.New("internal error")
	}
	return err
}
