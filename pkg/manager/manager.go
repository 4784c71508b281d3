// Package manager is the session orchestration engine: it owns every session and
// exposes the player actions, the side-duel state machine and the flag sweep.
package manager

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/clock"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/game"
)

const tracerName = "github.com/tecu23/sideduel-server/pkg/manager"

// SessionStore is the session registry the manager works against
type SessionStore interface {
	GetOrCreate(id string, create func() *game.Session) *game.Session
	Get(id string) (*game.Session, error)
	List() []*game.Session
}

// TimeControl holds the allotments for main games and side duels
type TimeControl struct {
	MainInitial   time.Duration
	MainIncrement time.Duration
	SideAttacker  time.Duration
	SideDefender  time.Duration
}

// DefaultTimeControl is 15+2 for the main game, 5 minutes for the attacker and 1
// minute for the defender of a duel.
func DefaultTimeControl() TimeControl {
	return TimeControl{
		MainInitial:   15 * time.Minute,
		MainIncrement: 2 * time.Second,
		SideAttacker:  5 * time.Minute,
		SideDefender:  time.Minute,
	}
}

// Option configures a Manager
type Option func(*Manager)

// WithTimeSource replaces the wall clock, e.g. with a clock.Manual in tests
func WithTimeSource(now clock.TimeSource) Option {
	return func(m *Manager) { m.now = now }
}

// WithTimeControl overrides DefaultTimeControl
func WithTimeControl(tc TimeControl) Option {
	return func(m *Manager) { m.timeControl = tc }
}

// WithTracer overrides the global tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) { m.tracer = tracer }
}

// Manager orchestrates all sessions. Every action takes the lock of exactly one
// session; actions on different sessions never block each other.
type Manager struct {
	store       SessionStore
	rules       rules.Engine
	publisher   *events.Publisher
	logger      *zap.Logger
	tracer      trace.Tracer
	now         clock.TimeSource
	timeControl TimeControl
}

// NewManager creates a new manager
func NewManager(
	store SessionStore,
	engine rules.Engine,
	publisher *events.Publisher,
	logger *zap.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		store:       store,
		rules:       engine,
		publisher:   publisher,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		now:         clock.SystemTime{},
		timeControl: DefaultTimeControl(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Join seats playerID in the first open seat of the session (creating the session on
// first reference), or registers a spectator when both seats are taken. Re-joining
// with a seated identity only updates the name.
func (m *Manager) Join(ctx context.Context, sessionID, playerID, name string) (res JoinResult, err error) {
	_, span := m.startSpan(ctx, "Join", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	if sessionID == "" {
		return JoinResult{}, ErrSessionNotFound
	}

	session := m.store.GetOrCreate(sessionID, func() *game.Session {
		return m.newSession(sessionID)
	})

	session.Lock()
	role := m.join(session, playerID, name)
	session.Unlock()

	m.logger.Info("player joined",
		zap.String("session_id", sessionID),
		zap.String("player_id", playerID),
		zap.String("role", string(role)),
	)

	m.publish(sessionID)
	return JoinResult{Role: role}, nil
}

func (m *Manager) join(s *game.Session, playerID, name string) game.Role {
	if p, ok := s.Seat(playerID); ok {
		p.Name = name
		return game.Role(p.Color)
	}

	seat := s.OpenSeat()
	if seat == color.None {
		s.Spectators[playerID] = struct{}{}
		return game.RoleSpectator
	}

	delete(s.Spectators, playerID)
	s.Sit(playerID, name, seat)

	// The main clock starts the first time both seats are filled.
	if s.Full() && !s.Started && !s.Ended {
		s.Started = true
		s.Main.Clock.Start(m.rules.Turn(s.Main.Position))
	}

	return game.Role(seat)
}

// Leave vacates the seat or spectator entry of playerID. The game goes on and the
// clock keeps running.
func (m *Manager) Leave(ctx context.Context, sessionID, playerID string) (err error) {
	_, span := m.startSpan(ctx, "Leave", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return err
	}

	session.Lock()
	removed := session.Remove(playerID)
	session.Unlock()

	if removed {
		m.logger.Info("player left",
			zap.String("session_id", sessionID),
			zap.String("player_id", playerID),
		)
		m.publish(sessionID)
	}

	return nil
}

// Snapshot returns the client-facing view of a session
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (view game.Snapshot, err error) {
	_, span := m.startSpan(ctx, "Snapshot", sessionID, "")
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}

	session.Lock()
	defer session.Unlock()

	return session.View(m.rules), nil
}

// SessionIDs lists every live session
func (m *Manager) SessionIDs() []string {
	sessions := m.store.List()
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

// Tick sweeps every running session for flags: a flagged main clock ends the game,
// a flagged duel clock resolves the duel as a loss on time. It returns the ids of the
// sessions that were still running when swept.
func (m *Manager) Tick(ctx context.Context) []string {
	_, span := m.tracer.Start(ctx, "manager.Tick")
	defer span.End()

	var swept []string
	for _, session := range m.store.List() {
		session.Lock()
		if !session.Ended {
			m.sweep(session)
			swept = append(swept, session.ID)
		}
		session.Unlock()
	}

	span.SetAttributes(attribute.Int("sessions.swept", len(swept)))
	return swept
}

func (m *Manager) sweep(s *game.Session) {
	if flagged := s.Main.Clock.Flagged(); flagged != color.None {
		m.conclude(s, flagged.String()+" flagged")
		return
	}

	if s.Side == nil {
		return
	}

	if flagged := s.Side.Clock.Flagged(); flagged != color.None {
		if err := m.resolveSideDuel(s, flagged.Opp(), reasonTime); err != nil {
			m.logger.Error("side duel timeout resolution failed",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}
}

// Run drives Tick every interval and publishes the swept sessions until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("flag sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("flag sweeper stopped")
			return nil
		case <-ticker.C:
			for _, id := range m.Tick(ctx) {
				m.publish(id)
			}
		}
	}
}

func (m *Manager) newSession(id string) *game.Session {
	tc := m.timeControl
	mainClock := clock.NewClock(tc.MainInitial, tc.MainInitial, tc.MainIncrement, m.now)
	return game.NewSession(id, m.rules.NewGame(), mainClock, m.now.Now())
}

// conclude ends the game. The caller holds the session lock.
func (m *Manager) conclude(s *game.Session, message string) {
	s.Conclude(message)

	m.logger.Info("game concluded",
		zap.String("session_id", s.ID),
		zap.String("reason", message),
		zap.Int("moves", s.Moves),
	)

	m.publisher.Publish(events.Event{
		Type:    events.EventGameConcluded,
		GameID:  s.ID,
		Payload: events.NoticePayload{Message: message},
	})
}

// publish is the broadcast hook called after every mutation
func (m *Manager) publish(sessionID string) {
	m.publisher.Publish(events.Event{
		Type:   events.EventSessionUpdated,
		GameID: sessionID,
	})
}

func (m *Manager) startSpan(ctx context.Context, name, sessionID, playerID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "manager."+name, trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("player.id", playerID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
