// Package rules wraps the chess rules library behind the small surface the session
// manager needs: apply a move, ask whose turn it is, detect the end of a game and
// serialize a position.
package rules

import (
	"errors"
	"fmt"

	"github.com/tecu23/sideduel-server/internal/color"
)

// ErrIllegalMove is returned for any move the rules reject
var ErrIllegalMove = errors.New("illegal move")

// Move is a move request in coordinate form, e.g. {From: "e7", To: "e8", Promotion: "q"}
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// UCI returns the move in UCI notation
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

func (m Move) String() string { return m.UCI() }

// Outcome is the terminal status of a position
type Outcome int

// Possible outcomes. Draw covers insufficient material, threefold repetition and the
// fifty-move rule.
const (
	OutcomeNone Outcome = iota
	OutcomeCheckmate
	OutcomeStalemate
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCheckmate:
		return "checkmate"
	case OutcomeStalemate:
		return "stalemate"
	case OutcomeDraw:
		return "draw"
	}
	return "none"
}

// Applied describes what a legal move did to the board
type Applied struct {
	Captured  string // piece kind ("p", "n", "b", "r", "q"), empty when nothing was taken
	EnPassant bool
}

// IsCapture reports whether the move took a piece
func (a Applied) IsCapture() bool {
	return a.Captured != ""
}

// Engine is the rules collaborator. Implementations never mutate the position they
// are given; Apply and ApplyAs return a new one.
type Engine interface {
	NewGame() *Position
	NewGameWithTurn(turn color.Color) (*Position, error)
	Apply(p *Position, m Move) (*Position, Applied, error)
	ApplyAs(p *Position, mover color.Color, m Move) (*Position, Applied, error)
	Terminal(p *Position) Outcome
	Turn(p *Position) color.Color
	Serialize(p *Position) string
}
