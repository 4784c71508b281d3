package manager

import (
	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/pkg/game"
)

// MoveResultType discriminates the outcomes of MoveMain and MoveSide
type MoveResultType string

// MoveMain returns MoveApplied or SideDuelStarted; MoveSide returns MoveApplied,
// Checkmate, Draw or Timeout.
const (
	MoveApplied     MoveResultType = "move-applied"
	SideDuelStarted MoveResultType = "side-duel-started"
	Checkmate       MoveResultType = "checkmate"
	Draw            MoveResultType = "draw"
	Timeout         MoveResultType = "timeout"
)

// MoveResult is the acknowledgement of a move. Winner is set for Checkmate and
// Timeout, Flagged only for Timeout.
type MoveResult struct {
	Type    MoveResultType `json:"type"`
	Winner  color.Color    `json:"winner,omitempty"`
	Flagged color.Color    `json:"flagged,omitempty"`
}

// JoinResult carries the role the joiner ended up with
type JoinResult struct {
	Role game.Role `json:"role"`
}

// ResignResult names the player credited with the win
type ResignResult struct {
	Winner color.Color `json:"winner"`
}

// DrawOfferResult reports whether the offer matched a pending one and ended the game
type DrawOfferResult struct {
	Accepted bool `json:"accepted"`
}

// DrawDeclineResult reports whether there was an opposing offer to decline
type DrawDeclineResult struct {
	Declined bool `json:"declined"`
}
