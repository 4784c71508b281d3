package manager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/color"
)

// Resign ends the game in the opponent's favour, discarding any running duel
func (m *Manager) Resign(ctx context.Context, sessionID, playerID string) (res ResignResult, err error) {
	_, span := m.startSpan(ctx, "Resign", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return ResignResult{}, err
	}

	session.Lock()
	if session.Ended {
		session.Unlock()
		return ResignResult{}, ErrGameFinished
	}

	player, ok := session.Seat(playerID)
	if !ok {
		session.Unlock()
		return ResignResult{}, ErrNotParticipant
	}

	m.conclude(session, fmt.Sprintf("%s resigned", player.Color))
	session.Unlock()

	m.publish(sessionID)
	return ResignResult{Winner: player.Color.Opp()}, nil
}

// OfferDraw records a draw offer, or accepts the opponent's pending one
func (m *Manager) OfferDraw(ctx context.Context, sessionID, playerID string) (res DrawOfferResult, err error) {
	_, span := m.startSpan(ctx, "OfferDraw", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return DrawOfferResult{}, err
	}

	session.Lock()
	defer func() {
		session.Unlock()
		if err == nil {
			m.publish(sessionID)
		}
	}()

	if session.Ended {
		return DrawOfferResult{}, ErrGameFinished
	}

	player, ok := session.Seat(playerID)
	if !ok {
		return DrawOfferResult{}, ErrNotParticipant
	}
	if session.DuelActive() {
		return DrawOfferResult{}, ErrDrawDuringDuel
	}

	if session.DrawOffer != color.None && session.DrawOffer != player.Color {
		m.conclude(session, "Draw agreed")
		return DrawOfferResult{Accepted: true}, nil
	}

	session.DrawOffer = player.Color
	session.StatusMessage = fmt.Sprintf("%s offers a draw", player.Color)

	m.logger.Info("draw offered",
		zap.String("session_id", sessionID),
		zap.String("color", player.Color.String()),
	)

	return DrawOfferResult{Accepted: false}, nil
}

// DeclineDraw clears the opponent's pending offer, if there is one
func (m *Manager) DeclineDraw(ctx context.Context, sessionID, playerID string) (res DrawDeclineResult, err error) {
	_, span := m.startSpan(ctx, "DeclineDraw", sessionID, playerID)
	defer func() { endSpan(span, err) }()

	session, err := m.store.Get(sessionID)
	if err != nil {
		return DrawDeclineResult{}, err
	}

	session.Lock()
	defer func() {
		session.Unlock()
		if err == nil {
			m.publish(sessionID)
		}
	}()

	player, ok := session.Seat(playerID)
	if !ok {
		return DrawDeclineResult{}, ErrNotParticipant
	}

	if session.DrawOffer == color.None || session.DrawOffer == player.Color {
		return DrawDeclineResult{Declined: false}, nil
	}

	session.DrawOffer = color.None
	session.StatusMessage = fmt.Sprintf("%s declined the draw offer", player.Color)

	return DrawDeclineResult{Declined: true}, nil
}
