// Package game holds the per-room aggregate: roster, main game, side duel and status
package game

import (
	"sync"
	"time"

	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/clock"
)

// Player is a seated participant
type Player struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Color color.Color `json:"color"`
}

// Role is what a join resolved to
type Role string

// Possible roles
const (
	RoleWhite     Role = "white"
	RoleBlack     Role = "black"
	RoleSpectator Role = "spectator"
)

// MainGame is the primary board with its clock and the capture awaiting a duel, if any
type MainGame struct {
	Position       *rules.Position
	Clock          *clock.Clock
	PendingCapture *PendingCapture
}

// SideGame is the duel deciding a pending capture
type SideGame struct {
	Position  *rules.Position
	Clock     *clock.Clock
	Attacker  color.Color
	Defender  color.Color
	StartedAt time.Time
}

// Session is one room. All fields are guarded by the session lock; callers take it
// with Lock/Unlock around every read or mutation, including snapshots, because
// reading a clock syncs it.
type Session struct {
	ID        string
	CreatedAt time.Time

	Players    map[string]*Player
	White      *Player
	Black      *Player
	Spectators map[string]struct{}

	Main MainGame
	Side *SideGame

	StatusMessage string
	Ended         bool
	DrawOffer     color.Color

	// Started is set once the main clock has run for the first time
	Started bool
	Moves   int

	mu sync.Mutex
}

// NewSession creates an empty room around a fresh main game
func NewSession(id string, pos *rules.Position, mainClock *clock.Clock, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		Players:    make(map[string]*Player),
		Spectators: make(map[string]struct{}),
		Main: MainGame{
			Position: pos,
			Clock:    mainClock,
		},
	}
}

// Lock takes the session's exclusive section
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases it
func (s *Session) Unlock() { s.mu.Unlock() }

// Seat returns the seated player for id
func (s *Session) Seat(id string) (*Player, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// PlayerFor returns whoever sits in the given color
func (s *Session) PlayerFor(c color.Color) *Player {
	if c == color.White {
		return s.White
	}
	return s.Black
}

// OpenSeat returns the first free color, white before black, or color.None
func (s *Session) OpenSeat() color.Color {
	if s.White == nil {
		return color.White
	}
	if s.Black == nil {
		return color.Black
	}
	return color.None
}

// Full reports whether both seats are taken
func (s *Session) Full() bool {
	return s.White != nil && s.Black != nil
}

// Sit places a new player in the given seat
func (s *Session) Sit(id, name string, c color.Color) *Player {
	p := &Player{ID: id, Name: name, Color: c}
	s.Players[id] = p
	if c == color.White {
		s.White = p
	} else {
		s.Black = p
	}
	return p
}

// Remove vacates id's seat or spectator entry. It reports whether anything changed.
func (s *Session) Remove(id string) bool {
	removed := false
	if p, ok := s.Players[id]; ok {
		delete(s.Players, id)
		if s.White == p {
			s.White = nil
		}
		if s.Black == p {
			s.Black = nil
		}
		removed = true
	}
	if _, ok := s.Spectators[id]; ok {
		delete(s.Spectators, id)
		removed = true
	}
	return removed
}

// DuelActive reports whether a side duel is running
func (s *Session) DuelActive() bool {
	return s.Side != nil
}

// Conclude ends the game: both clocks stop, duel state and draw offers are dropped
func (s *Session) Conclude(message string) {
	s.Ended = true
	s.StatusMessage = message
	s.Main.Clock.Pause()
	if s.Side != nil {
		s.Side.Clock.Pause()
	}
	s.Side = nil
	s.Main.PendingCapture = nil
	s.DrawOffer = color.None
}
