package messages

import (
	"encoding/json"
	"fmt"

	"github.com/tecu23/sideduel-server/internal/rules"
)

// Inbound event names
const (
	EventJoin        = "JOIN"
	EventMoveMain    = "MOVE_MAIN"
	EventMoveSide    = "MOVE_SIDE"
	EventResign      = "RESIGN"
	EventOfferDraw   = "OFFER_DRAW"
	EventDeclineDraw = "DECLINE_DRAW"
	EventLeave       = "LEAVE"
)

// InboundMessage is the generic wrapper for messages coming from the client.
// The "event" field tells us the action; "payload" is the data we parse further.
// RequestID is echoed back in the ACK.
type InboundMessage struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// GamePayload carries only the target session, used by RESIGN, OFFER_DRAW,
// DECLINE_DRAW and LEAVE
type GamePayload struct {
	GameID string `json:"gameId"`
}

// JoinPayload represents the payload for joining (and lazily creating) a session
type JoinPayload struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

// MovePayload is shared by MOVE_MAIN and MOVE_SIDE
type MovePayload struct {
	GameID string     `json:"gameId"`
	Move   rules.Move `json:"move"`
}

// Decode unmarshals the payload into v and checks that a game id is present
func (m InboundMessage) Decode(v interface{ gameID() string }) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("invalid %s payload: missing payload", m.Event)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", m.Event, err)
	}
	if v.gameID() == "" {
		return fmt.Errorf("invalid %s payload: missing gameId", m.Event)
	}
	return nil
}

func (p *GamePayload) gameID() string { return p.GameID }
func (p *JoinPayload) gameID() string { return p.GameID }
func (p *MovePayload) gameID() string { return p.GameID }
