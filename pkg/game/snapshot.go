package game

import (
	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/clock"
)

// StatusType is the coarse phase shown to clients
type StatusType string

// Possible status types
const (
	StatusWaiting  StatusType = "waiting"
	StatusOngoing  StatusType = "ongoing"
	StatusSideDuel StatusType = "side-duel"
	StatusEnded    StatusType = "ended"
)

// Status pairs the phase with the latest human-readable message
type Status struct {
	Type    StatusType `json:"type"`
	Message string     `json:"message,omitempty"`
}

// Snapshot is the externally published view of a session at one instant
type Snapshot struct {
	ID              string          `json:"id"`
	FEN             string          `json:"fen"`
	SideGameFEN     string          `json:"sideGameFen,omitempty"`
	MainClock       clock.Snapshot  `json:"mainClock"`
	SideClock       *clock.Snapshot `json:"sideClock,omitempty"`
	ActiveColor     color.Color     `json:"activeColor"`
	SideActiveColor color.Color     `json:"sideActiveColor,omitempty"`
	PendingCapture  *PendingCapture `json:"pendingCapture,omitempty"`
	Status          Status          `json:"status"`
	WhitePlayer     *Player         `json:"whitePlayer,omitempty"`
	BlackPlayer     *Player         `json:"blackPlayer,omitempty"`
	Spectators      int             `json:"spectators"`
	DrawOffer       color.Color     `json:"drawOffer,omitempty"`
}

// View builds the snapshot. The caller must hold the session lock.
func (s *Session) View(engine rules.Engine) Snapshot {
	view := Snapshot{
		ID:          s.ID,
		FEN:         engine.Serialize(s.Main.Position),
		MainClock:   s.Main.Clock.Snapshot(),
		ActiveColor: engine.Turn(s.Main.Position),
		Status:      s.status(),
		Spectators:  len(s.Spectators),
		DrawOffer:   s.DrawOffer,
	}

	if s.White != nil {
		p := *s.White
		view.WhitePlayer = &p
	}
	if s.Black != nil {
		p := *s.Black
		view.BlackPlayer = &p
	}

	if s.Main.PendingCapture != nil {
		pc := *s.Main.PendingCapture
		view.PendingCapture = &pc
	}

	if s.Side != nil {
		side := s.Side.Clock.Snapshot()
		view.SideGameFEN = engine.Serialize(s.Side.Position)
		view.SideClock = &side
		view.SideActiveColor = engine.Turn(s.Side.Position)
	}

	return view
}

func (s *Session) status() Status {
	switch {
	case s.Ended:
		return Status{Type: StatusEnded, Message: s.StatusMessage}
	case !s.Full():
		return Status{Type: StatusWaiting, Message: "Waiting for players"}
	case s.Side != nil:
		msg := s.StatusMessage
		if msg == "" {
			msg = "Capture challenged!"
		}
		return Status{Type: StatusSideDuel, Message: msg}
	}
	return Status{Type: StatusOngoing, Message: s.StatusMessage}
}
