package game

import (
	"fmt"

	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
)

// PendingCapture is a capture held back until its side duel is decided
type PendingCapture struct {
	Move           rules.Move  `json:"move"`
	Attacker       color.Color `json:"attackerColor"`
	Defender       color.Color `json:"defenderColor"`
	SnapshotFEN    string      `json:"snapshotFen"`
	CapturedPiece  string      `json:"capturedPiece,omitempty"`
	EnPassant      bool        `json:"isEnPassant"`
	CapturedSquare string      `json:"capturedSquare,omitempty"`
}

// DefenderSquare is where the captured piece actually stands before the capture
func (pc *PendingCapture) DefenderSquare() string {
	if pc.EnPassant && pc.CapturedSquare != "" {
		return pc.CapturedSquare
	}
	return pc.Move.To
}

// InversionMove is the defender's retroactive recapture: from the captured piece's
// square back to the attacker's origin.
func (pc *PendingCapture) InversionMove() rules.Move {
	return rules.Move{From: pc.DefenderSquare(), To: pc.Move.From}
}

// DetectCapture simulates move on pos without committing it. It returns nil for a
// legal non-capture, a PendingCapture for a legal capture, and an error wrapping
// rules.ErrIllegalMove otherwise.
func DetectCapture(
	engine rules.Engine,
	pos *rules.Position,
	attacker color.Color,
	move rules.Move,
) (*PendingCapture, error) {
	_, applied, err := engine.Apply(pos, move)
	if err != nil {
		return nil, fmt.Errorf("detect capture: %w", err)
	}

	if !applied.IsCapture() {
		return nil, nil
	}

	pending := &PendingCapture{
		Move:          move,
		Attacker:      attacker,
		Defender:      attacker.Opp(),
		SnapshotFEN:   engine.Serialize(pos),
		CapturedPiece: applied.Captured,
		EnPassant:     applied.EnPassant,
	}

	if applied.EnPassant {
		pending.CapturedSquare = enPassantVictim(move.To, attacker)
	}

	return pending, nil
}

// enPassantVictim returns the square of the pawn taken en passant, or "" when the
// computed rank falls off the board.
func enPassantVictim(to string, attacker color.Color) string {
	if len(to) != 2 {
		return ""
	}

	offset := 1
	if attacker == color.White {
		offset = -1
	}

	rank := int(to[1]-'0') + offset
	if rank < 1 || rank > 8 {
		return ""
	}

	return fmt.Sprintf("%c%d", to[0], rank)
}
