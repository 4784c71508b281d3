package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/sideduel-server/internal/color"
	"github.com/tecu23/sideduel-server/internal/rules"
)

func position(t *testing.T, e *rules.Standard, uci ...string) *rules.Position {
	t.Helper()
	p := e.NewGame()
	for _, mv := range uci {
		var err error
		p, _, err = e.Apply(p, rules.Move{From: mv[0:2], To: mv[2:4]})
		require.NoError(t, err, mv)
	}
	return p
}

func TestDetectCaptureIgnoresQuietMoves(t *testing.T) {
	e := rules.NewStandard()
	p := e.NewGame()

	pending, err := DetectCapture(e, p, color.White, rules.Move{From: "e2", To: "e4"})
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Empty(t, p.Moves(), "committed state must stay untouched")
}

func TestDetectCaptureRejectsIllegalMoves(t *testing.T) {
	e := rules.NewStandard()

	_, err := DetectCapture(e, e.NewGame(), color.White, rules.Move{From: "e2", To: "e6"})
	assert.ErrorIs(t, err, rules.ErrIllegalMove)
}

func TestDetectCaptureBuildsPendingCapture(t *testing.T) {
	e := rules.NewStandard()
	p := position(t, e, "e2e4", "d7d5")
	fen := e.Serialize(p)

	pending, err := DetectCapture(e, p, color.White, rules.Move{From: "e4", To: "d5"})
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.Equal(t, color.White, pending.Attacker)
	assert.Equal(t, color.Black, pending.Defender)
	assert.Equal(t, fen, pending.SnapshotFEN)
	assert.Equal(t, "p", pending.CapturedPiece)
	assert.False(t, pending.EnPassant)
	assert.Empty(t, pending.CapturedSquare)
	assert.Equal(t, rules.Move{From: "d5", To: "e4"}, pending.InversionMove())
	assert.Equal(t, fen, e.Serialize(p))
}

func TestDetectCaptureEnPassant(t *testing.T) {
	e := rules.NewStandard()
	p := position(t, e, "e2e4", "a7a6", "e4e5", "d7d5")

	pending, err := DetectCapture(e, p, color.White, rules.Move{From: "e5", To: "d6"})
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.True(t, pending.EnPassant)
	assert.Equal(t, "d5", pending.CapturedSquare)
	assert.Equal(t, "d5", pending.DefenderSquare())
}

func TestEnPassantVictim(t *testing.T) {
	assert.Equal(t, "d5", enPassantVictim("d6", color.White))
	assert.Equal(t, "e4", enPassantVictim("e3", color.Black))
	assert.Equal(t, "", enPassantVictim("a1", color.White))
	assert.Equal(t, "", enPassantVictim("h8", color.Black))
}
