package manager

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/clock"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/game"
)

type duelReason string

const (
	reasonCheckmate duelReason = "checkmate"
	reasonTime      duelReason = "time"
	reasonDraw      duelReason = "draw"
)

// MoveMain plays a move on the main board. A capture is not applied: it is held as a
// pending capture and a side duel starts instead.
func (m *Manager) MoveMain(ctx context.Context, sessionID, playerID string, move rules.Move) (res MoveResult, err error) {
	_, span := m.startSpan(ctx, "MoveMain", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return MoveResult{}, err
	}

	session.Lock()
	res, err = m.moveMain(session, playerID, move)
	session.Unlock()

	if err != nil {
		return MoveResult{}, err
	}

	m.publish(sessionID)
	return res, nil
}

func (m *Manager) moveMain(s *game.Session, playerID string, move rules.Move) (MoveResult, error) {
	if s.Ended {
		return MoveResult{}, ErrGameFinished
	}
	if s.DuelActive() {
		return MoveResult{}, ErrSideDuelInProgress
	}

	player, ok := s.Seat(playerID)
	if !ok {
		return MoveResult{}, ErrNotParticipant
	}
	if m.rules.Turn(s.Main.Position) != player.Color {
		return MoveResult{}, ErrNotYourTurn
	}
	if s.Main.PendingCapture != nil {
		return MoveResult{}, ErrCapturePending
	}

	pending, err := game.DetectCapture(m.rules, s.Main.Position, player.Color, move)
	if err != nil {
		return MoveResult{}, err
	}

	if pending != nil {
		if err := m.startSideDuel(s, pending); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{Type: SideDuelStarted}, nil
	}

	next, _, err := m.rules.Apply(s.Main.Position, move)
	if err != nil {
		return MoveResult{}, err
	}

	s.Main.Position = next
	s.Moves++
	m.afterMainMove(s, player.Color)

	return MoveResult{Type: MoveApplied}, nil
}

// MoveSide plays a move in the running side duel
func (m *Manager) MoveSide(ctx context.Context, sessionID, playerID string, move rules.Move) (res MoveResult, err error) {
	_, span := m.startSpan(ctx, "MoveSide", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return MoveResult{}, err
	}

	session.Lock()
	res, err = m.moveSide(session, playerID, move)
	session.Unlock()

	if err != nil {
		return MoveResult{}, err
	}

	m.publish(sessionID)
	return res, nil
}

func (m *Manager) moveSide(s *game.Session, playerID string, move rules.Move) (MoveResult, error) {
	side := s.Side
	if side == nil {
		return MoveResult{}, ErrNoSideDuel
	}

	player, ok := s.Seat(playerID)
	if !ok {
		return MoveResult{}, ErrNotParticipant
	}
	if m.rules.Turn(side.Position) != player.Color {
		return MoveResult{}, ErrNotYourTurn
	}

	// A move arriving after the flag fell, but before the sweep noticed, loses on time.
	if flagged := side.Clock.Flagged(); flagged != color.None {
		return m.duelTimeout(s, flagged)
	}

	next, _, err := m.rules.Apply(side.Position, move)
	if err != nil {
		return MoveResult{}, err
	}

	side.Position = next
	side.Clock.CompleteMove(player.Color)

	if flagged := side.Clock.Flagged(); flagged != color.None {
		return m.duelTimeout(s, flagged)
	}

	switch m.rules.Terminal(next) {
	case rules.OutcomeCheckmate:
		winner := m.rules.Turn(next).Opp()
		if err := m.resolveSideDuel(s, winner, reasonCheckmate); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{Type: Checkmate, Winner: winner}, nil

	case rules.OutcomeStalemate, rules.OutcomeDraw:
		if err := m.resolveSideDuel(s, color.None, reasonDraw); err != nil {
			return MoveResult{}, err
		}
		return MoveResult{Type: Draw}, nil
	}

	return MoveResult{Type: MoveApplied}, nil
}

func (m *Manager) duelTimeout(s *game.Session, flagged color.Color) (MoveResult, error) {
	winner := flagged.Opp()
	if err := m.resolveSideDuel(s, winner, reasonTime); err != nil {
		return MoveResult{}, err
	}
	return MoveResult{Type: Timeout, Winner: winner, Flagged: flagged}, nil
}

// startSideDuel stores the pending capture, pauses the main clock and starts the duel
// clock for the attacker. Nothing is mutated if the duel position cannot be built.
func (m *Manager) startSideDuel(s *game.Session, pending *game.PendingCapture) error {
	pos, err := m.rules.NewGameWithTurn(pending.Attacker)
	if err != nil {
		return &InternalFaultError{Op: "start side duel", Err: err}
	}

	tc := m.timeControl
	white, black := tc.SideDefender, tc.SideDefender
	if pending.Attacker == color.White {
		white = tc.SideAttacker
	} else {
		black = tc.SideAttacker
	}

	duelClock := clock.NewClock(white, black, 0, m.now)
	duelClock.Resume(pending.Attacker)

	s.Main.PendingCapture = pending
	s.Main.Clock.Pause()
	s.Side = &game.SideGame{
		Position:  pos,
		Clock:     duelClock,
		Attacker:  pending.Attacker,
		Defender:  pending.Defender,
		StartedAt: m.now.Now(),
	}
	s.StatusMessage = "Capture challenged!"

	m.logger.Info("side duel started",
		zap.String("session_id", s.ID),
		zap.String("attacker", pending.Attacker.String()),
		zap.String("capture", pending.Move.UCI()),
		zap.String("captured_piece", pending.CapturedPiece),
		zap.String("attacker_time", clock.FormatClockTime(tc.SideAttacker)),
		zap.String("defender_time", clock.FormatClockTime(tc.SideDefender)),
	)

	m.publisher.Publish(events.Event{
		Type:    events.EventSideDuelStarted,
		GameID:  s.ID,
		Payload: events.NoticePayload{Message: s.StatusMessage},
	})

	return nil
}

// resolveSideDuel commits the pending capture (or its inversion) to the main board,
// clears the duel and runs the post-move pipeline for the attacker. winner is
// color.None for a drawn duel. On an internal fault nothing is changed.
func (m *Manager) resolveSideDuel(s *game.Session, winner color.Color, reason duelReason) error {
	side, pending := s.Side, s.Main.PendingCapture
	if side == nil || pending == nil {
		return nil
	}

	defenderWon := winner != color.None && winner == side.Defender

	next, inverted, err := m.resolveCapture(s.Main.Position, pending, defenderWon)
	if err != nil {
		m.logger.Error("side duel resolution aborted",
			zap.String("session_id", s.ID),
			zap.String("capture", pending.Move.UCI()),
			zap.Error(err),
		)
		return err
	}

	s.Main.Position = next
	s.Moves++
	s.Side = nil
	s.Main.PendingCapture = nil
	s.StatusMessage = duelMessage(winner, side, defenderWon, inverted, reason)

	m.logger.Info("side duel resolved",
		zap.String("session_id", s.ID),
		zap.String("winner", winner.String()),
		zap.String("reason", string(reason)),
		zap.Bool("inverted", inverted),
	)

	m.publisher.Publish(events.Event{
		Type:    events.EventSideDuelResolved,
		GameID:  s.ID,
		Payload: events.NoticePayload{Message: s.StatusMessage},
	})

	// May end the game, in which case the conclusion replaces the duel message.
	m.afterMainMove(s, pending.Attacker)

	return nil
}

// resolveCapture computes the main position after the duel. When the defender won,
// the defender's piece retakes from its square back to the attacker's origin; if that
// move is illegal the original capture stands.
func (m *Manager) resolveCapture(
	pos *rules.Position,
	pending *game.PendingCapture,
	defenderWon bool,
) (*rules.Position, bool, error) {
	if defenderWon {
		next, _, err := m.rules.ApplyAs(pos, pending.Defender, pending.InversionMove())
		if err == nil {
			return next, true, nil
		}
		if !errors.Is(err, rules.ErrIllegalMove) {
			return nil, false, &InternalFaultError{Op: "apply inversion", Err: err}
		}
	}

	next, _, err := m.rules.Apply(pos, pending.Move)
	if err != nil {
		return nil, false, &InternalFaultError{Op: "apply capture", Err: err}
	}

	return next, false, nil
}

// afterMainMove is the post-move pipeline shared by ordinary moves and duel
// resolutions: clock hand-over, end-of-game detection, and re-aligning the clock
// with the side to move.
func (m *Manager) afterMainMove(s *game.Session, moving color.Color) {
	s.Started = true
	s.Main.Clock.CompleteMove(moving)

	pos := s.Main.Position
	switch m.rules.Terminal(pos) {
	case rules.OutcomeCheckmate:
		winner := m.rules.Turn(pos).Opp()
		m.conclude(s, fmt.Sprintf("Checkmate: %s wins", winner))
		return
	case rules.OutcomeStalemate:
		m.conclude(s, "Stalemate: draw")
		return
	case rules.OutcomeDraw:
		m.conclude(s, "Draw")
		return
	}

	// A flagged side is left for the sweep, never resumed.
	next := m.rules.Turn(pos)
	if next != s.Main.Clock.Active() && s.Main.Clock.Remaining(next) > 0 {
		s.Main.Clock.Resume(next)
	}
}

func duelMessage(winner color.Color, side *game.SideGame, defenderWon, inverted bool, reason duelReason) string {
	how := "on time"
	if reason == reasonCheckmate {
		how = "by checkmate"
	}

	switch {
	case defenderWon && inverted:
		return fmt.Sprintf("Defender won %s: capture reversed!", how)
	case defenderWon:
		return fmt.Sprintf("Defender won %s but inversion illegal: capture stands.", how)
	case winner == side.Attacker:
		return fmt.Sprintf("Attacker won %s: capture stands!", how)
	case reason == reasonDraw:
		return "Side duel drawn: capture stands."
	}
	return "Side duel resolved."
}
