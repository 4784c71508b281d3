package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/sideduel-server/internal/color"
)

func playAll(t *testing.T, e *Standard, p *Position, uci ...string) *Position {
	t.Helper()
	for _, mv := range uci {
		var err error
		p, _, err = e.Apply(p, Move{From: mv[0:2], To: mv[2:4], Promotion: mv[4:]})
		require.NoError(t, err, mv)
	}
	return p
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := NewStandard()
	start := e.NewGame()
	before := e.Serialize(start)

	next, applied, err := e.Apply(start, Move{From: "e2", To: "e4"})
	require.NoError(t, err)

	assert.False(t, applied.IsCapture())
	assert.Equal(t, before, e.Serialize(start))
	assert.Equal(t, color.White, e.Turn(start))
	assert.Equal(t, color.Black, e.Turn(next))
	assert.Equal(t, []string{"e2e4"}, next.Moves())
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	e := NewStandard()
	start := e.NewGame()

	for _, m := range []Move{
		{From: "e2", To: "e5"},
		{From: "e7", To: "e5"}, // wrong side
		{From: "e3", To: "e4"}, // empty square
		{From: "z9", To: "e4"},
		{From: "e2", To: "e4", Promotion: "k"},
	} {
		_, _, err := e.Apply(start, m)
		assert.ErrorIs(t, err, ErrIllegalMove, m.String())
	}
}

func TestApplyReportsCapture(t *testing.T) {
	e := NewStandard()
	p := playAll(t, e, e.NewGame(), "e2e4", "d7d5")

	_, applied, err := e.Apply(p, Move{From: "e4", To: "d5"})
	require.NoError(t, err)
	assert.Equal(t, "p", applied.Captured)
	assert.False(t, applied.EnPassant)
}

func TestApplyReportsEnPassant(t *testing.T) {
	e := NewStandard()
	p := playAll(t, e, e.NewGame(), "e2e4", "a7a6", "e4e5", "d7d5")

	next, applied, err := e.Apply(p, Move{From: "e5", To: "d6"})
	require.NoError(t, err)
	assert.True(t, applied.EnPassant)
	assert.Equal(t, "p", applied.Captured)
	assert.Equal(t, "", next.PieceAt("d5"))
	assert.Equal(t, "P", next.PieceAt("d6"))
}

func TestTerminalCheckmate(t *testing.T) {
	e := NewStandard()
	p := playAll(t, e, e.NewGame(), "f2f3", "e7e5", "g2g4", "d8h4")

	assert.Equal(t, OutcomeCheckmate, e.Terminal(p))
	assert.Equal(t, color.White, e.Turn(p))
}

func TestTerminalStalemate(t *testing.T) {
	e := NewStandard()
	p, err := e.FromFEN("7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, e.Terminal(p))

	p = playAll(t, e, p, "f1f7")
	assert.Equal(t, OutcomeStalemate, e.Terminal(p))
}

func TestTerminalInsufficientMaterial(t *testing.T) {
	e := NewStandard()
	p, err := e.FromFEN("7k/8/8/8/3p4/4K3/8/8 w - - 0 1")
	require.NoError(t, err)

	p = playAll(t, e, p, "e3d4")
	assert.Equal(t, OutcomeDraw, e.Terminal(p))
}

func TestNewGameWithTurn(t *testing.T) {
	e := NewStandard()
	p, err := e.NewGameWithTurn(color.Black)
	require.NoError(t, err)

	assert.Equal(t, color.Black, e.Turn(p))
	_, _, err = e.Apply(p, Move{From: "e2", To: "e4"})
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, _, err = e.Apply(p, Move{From: "e7", To: "e5"})
	assert.NoError(t, err)
}

func TestApplyAsMovesOutOfTurn(t *testing.T) {
	e := NewStandard()
	p := playAll(t, e, e.NewGame(), "b1c3", "g8f6", "c3d5")
	require.Equal(t, color.Black, e.Turn(p))

	next, applied, err := e.ApplyAs(p, color.White, Move{From: "d5", To: "f6"})
	require.NoError(t, err)

	assert.Equal(t, "n", applied.Captured)
	assert.Equal(t, "N", next.PieceAt("f6"))
	assert.Equal(t, "", next.PieceAt("d5"))
	assert.Equal(t, color.Black, e.Turn(next))
	assert.Equal(t, color.Black, e.Turn(p), "input untouched")
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	e := NewStandard()
	p, err := e.FromFEN("7k/P7/8/8/8/8/8/K7 w - - 0 1")
	require.NoError(t, err)

	next, _, err := e.Apply(p, Move{From: "a7", To: "a8"})
	require.NoError(t, err)
	assert.Equal(t, "Q", next.PieceAt("a8"))

	next, _, err = e.Apply(p, Move{From: "a7", To: "a8", Promotion: "n"})
	require.NoError(t, err)
	assert.Equal(t, "N", next.PieceAt("a8"))
}
