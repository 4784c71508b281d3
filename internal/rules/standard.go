package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/sideduel-server/internal/color"
)

// StartingBoard is the piece placement of the standard starting position
const StartingBoard = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Position is an immutable game state: a start FEN plus the UCI moves played from it.
// The cached game is only ever read.
type Position struct {
	startFEN string
	moves    []string
	game     *chess.Game
}

// FEN returns the serialized position
func (p *Position) FEN() string {
	return p.game.FEN()
}

// Moves returns the UCI moves played since the start FEN
func (p *Position) Moves() []string {
	return slices.Clone(p.moves)
}

// PieceAt returns the piece on square in FEN letters ("N" white knight, "p" black
// pawn), or "" for an empty or invalid square.
func (p *Position) PieceAt(square string) string {
	sq, _, _, err := parseSquare(square)
	if err != nil {
		return ""
	}

	piece := p.game.Position().Board().Piece(sq)
	if piece == chess.NoPiece {
		return ""
	}

	kind := pieceKind(piece.Type())
	if piece.Color() == chess.White {
		return strings.ToUpper(kind)
	}
	return kind
}

// Standard implements Engine with github.com/corentings/chess
type Standard struct{}

// NewStandard returns the standard chess rules engine
func NewStandard() *Standard {
	return &Standard{}
}

// NewGame returns the standard starting position, white to move
func (s *Standard) NewGame() *Position {
	return &Position{
		startFEN: fmt.Sprintf("%s w KQkq - 0 1", StartingBoard),
		game:     chess.NewGame(),
	}
}

// NewGameWithTurn returns the standard starting position with turn to move
func (s *Standard) NewGameWithTurn(turn color.Color) (*Position, error) {
	return fromFEN(fmt.Sprintf("%s %s KQkq - 0 1", StartingBoard, symbol(turn)))
}

// FromFEN loads an arbitrary position
func (s *Standard) FromFEN(fen string) (*Position, error) {
	return fromFEN(fen)
}

// Apply plays m for the side to move
func (s *Standard) Apply(p *Position, m Move) (*Position, Applied, error) {
	g, err := replay(p.startFEN, p.moves)
	if err != nil {
		return nil, Applied{}, err
	}

	applied, uci, err := play(g, m)
	if err != nil {
		return nil, Applied{}, err
	}

	moves := append(slices.Clone(p.moves), uci)
	return &Position{startFEN: p.startFEN, moves: moves, game: g}, applied, nil
}

// ApplyAs plays m for mover even when it is not mover's turn. The side to move is
// flipped (dropping any en passant target) before the move is checked, so the
// repetition history restarts from the flipped position.
func (s *Standard) ApplyAs(p *Position, mover color.Color, m Move) (*Position, Applied, error) {
	if s.Turn(p) == mover {
		return s.Apply(p, m)
	}

	fields := strings.Fields(p.game.FEN())
	if len(fields) < 4 {
		return nil, Applied{}, fmt.Errorf("malformed fen %q", p.game.FEN())
	}
	fields[1] = symbol(mover)
	fields[3] = "-"

	flipped, err := fromFEN(strings.Join(fields, " "))
	if err != nil {
		return nil, Applied{}, err
	}

	return s.Apply(flipped, m)
}

// Terminal reports whether the game is over and how
func (s *Standard) Terminal(p *Position) Outcome {
	switch p.game.Method() {
	case chess.Checkmate:
		return OutcomeCheckmate
	case chess.Stalemate:
		return OutcomeStalemate
	}

	if p.game.Outcome() == chess.Draw {
		return OutcomeDraw
	}

	for _, method := range p.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			return OutcomeDraw
		}
	}

	return OutcomeNone
}

// Turn returns the side to move
func (s *Standard) Turn(p *Position) color.Color {
	if p.game.Position().Turn() == chess.Black {
		return color.Black
	}
	return color.White
}

// Serialize returns the FEN of the position
func (s *Standard) Serialize(p *Position) string {
	return p.FEN()
}

func fromFEN(fen string) (*Position, error) {
	g, err := replay(fen, nil)
	if err != nil {
		return nil, err
	}
	return &Position{startFEN: fen, game: g}, nil
}

func replay(fen string, moves []string) (*chess.Game, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}

	g := chess.NewGame(option)
	for _, mv := range moves {
		if err := g.PushNotationMove(mv, chess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mv, err)
		}
	}

	return g, nil
}

// play pushes m onto g and reports what it captured. g is only modified on success.
func play(g *chess.Game, m Move) (Applied, string, error) {
	from, _, _, err := parseSquare(m.From)
	if err != nil {
		return Applied{}, "", fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	to, toFile, toRank, err := parseSquare(m.To)
	if err != nil {
		return Applied{}, "", fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	board := g.Position().Board()
	mover := board.Piece(from)
	if mover == chess.NoPiece {
		return Applied{}, "", fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}

	promotion := strings.ToLower(m.Promotion)
	switch promotion {
	case "q", "r", "b", "n":
	case "":
		// a pawn reaching the last rank without a choice becomes a queen
		if mover.Type() == chess.Pawn && (toRank == 0 || toRank == 7) {
			promotion = "q"
		}
	default:
		return Applied{}, "", fmt.Errorf("%w: bad promotion %q", ErrIllegalMove, m.Promotion)
	}

	var applied Applied
	if target := board.Piece(to); target != chess.NoPiece {
		applied.Captured = pieceKind(target.Type())
	} else if mover.Type() == chess.Pawn && fileOf(m.From) != toFile {
		applied.Captured = pieceKind(chess.Pawn)
		applied.EnPassant = true
	}

	uci := m.From + m.To + promotion
	if err := g.PushNotationMove(uci, chess.UCINotation{}, nil); err != nil {
		return Applied{}, "", fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	return applied, uci, nil
}

// parseSquare turns "e4" into a square plus zero-based file and rank
func parseSquare(s string) (chess.Square, int, int, error) {
	if len(s) != 2 {
		return 0, 0, 0, fmt.Errorf("bad square %q", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, 0, 0, fmt.Errorf("bad square %q", s)
	}

	return chess.Square(rank*8 + file), file, rank, nil
}

func fileOf(s string) int {
	return int(s[0] - 'a')
}

func pieceKind(t chess.PieceType) string {
	switch t {
	case chess.King:
		return "k"
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	case chess.Pawn:
		return "p"
	}
	return ""
}

func symbol(c color.Color) string {
	if c == color.Black {
		return "b"
	}
	return "w"
}
