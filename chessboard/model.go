package chessboard

import (
	"errors"
	"fmt"

	chess "github.com/corentings/chess/v2"
)

// ErrIllegalMove is returned when a caller-supplied move is not legal in
// the current position. The interaction state machine never constructs
// such a move; hitting this from PlayMove is a host programming error.
var ErrIllegalMove = errors.New("chessboard: illegal move")

// Model is the narrow board-model contract the widget depends on. It is
// a facade over a rules engine: no move legality is computed on this side
// of the boundary, so any conformant engine can back a widget.
type Model interface {
	// PieceAt returns the piece on the given square, if any.
	PieceAt(sq Square) (Piece, bool)
	// SideToMove returns the color whose turn it is.
	SideToMove() Color
	// LegalMoves returns every legal move in the current position.
	LegalMoves() []Move
	// LegalMovesFrom returns the legal moves originating on sq.
	LegalMovesFrom(sq Square) []Move
	// InCheck reports whether the side to move is in check.
	InCheck() bool
	// KingSquare locates the king of the given color.
	KingSquare(c Color) (Square, bool)
	// IsCastling reports whether the move is a castling move.
	IsCastling(m Move) bool
	// CastlingRookMove resolves the rook displacement implied by a
	// castling move. ok is false when the move does not castle.
	CastlingRookMove(m Move) (Move, bool)
	// ApplyMove mutates the position. Illegal moves return
	// ErrIllegalMove and leave the position untouched.
	ApplyMove(m Move) error
	// UndoLastMove pops the most recent move. It reports false when
	// there is no history; that is a reachable idle condition, not an
	// error.
	UndoLastMove() (Move, bool)
	// LastMove returns the most recently applied move, if any.
	LastMove() (Move, bool)
	// LastCastlingRook resolves the rook displacement of the most
	// recently applied move, when that move was a castling move. Undo
	// animation needs this after the fact, when the move is no longer
	// in the legal set.
	LastCastlingRook() (Move, bool)
	// FEN returns the current position in FEN.
	FEN() string
}

type undoFrame struct {
	move   Move
	engine chess.Move
	prev   *chess.Position
}

// GameModel is the production Model, wrapping a corentings/chess
// position plus an explicit undo stack of prior positions. Keeping whole
// positions makes undo an exact inverse of apply: the restored position
// is FEN-equal to the pre-move one for every move kind, including
// castling, en passant and promotion.
type GameModel struct {
	pos     *chess.Position
	history []undoFrame
}

// NewGameModel returns a model at the standard starting position.
func NewGameModel() *GameModel {
	return &GameModel{pos: chess.StartingPosition()}
}

// NewGameModelFEN returns a model at the given FEN position.
func NewGameModelFEN(fen string) (*GameModel, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("chessboard: parsing FEN: %v", err)
	}
	return &GameModel{pos: chess.NewGame(opt).Position()}, nil
}

// Position exposes the wrapped engine position for hosts that need
// notation encoding (SAN, UCI) at the boundary.
func (g *GameModel) Position() *chess.Position {
	return g.pos
}

func (g *GameModel) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	return corePiece(g.pos.Board().Piece(chess.Square(sq)))
}

func (g *GameModel) SideToMove() Color {
	return coreColor(g.pos.Turn())
}

func (g *GameModel) LegalMoves() []Move {
	engine := g.pos.ValidMoves()
	moves := make([]Move, 0, len(engine))
	for i := range engine {
		moves = append(moves, coreMove(&engine[i]))
	}
	return moves
}

func (g *GameModel) LegalMovesFrom(sq Square) []Move {
	var moves []Move
	for _, m := range g.LegalMoves() {
		if m.From == sq {
			moves = append(moves, m)
		}
	}
	return moves
}

// InCheck is derived with a board scan rather than from the engine,
// which does not export its internal check state.
func (g *GameModel) InCheck() bool {
	sq, ok := g.KingSquare(g.SideToMove())
	if !ok {
		return false
	}
	return squareAttacked(g.PieceAt, sq, g.SideToMove().Other())
}

func (g *GameModel) KingSquare(c Color) (Square, bool) {
	for sq, p := range g.pos.Board().SquareMap() {
		piece, ok := corePiece(p)
		if ok && piece.Kind == King && piece.Color == c {
			return Square(sq), true
		}
	}
	return NoSquare, false
}

func (g *GameModel) IsCastling(m Move) bool {
	if em, ok := g.findEngineMove(m); ok {
		return em.HasTag(chess.KingSideCastle) || em.HasTag(chess.QueenSideCastle)
	}
	return false
}

func (g *GameModel) CastlingRookMove(m Move) (Move, bool) {
	if !g.IsCastling(m) {
		return Move{}, false
	}
	return ResolveCastlingRook(g.PieceAt, m)
}

func (g *GameModel) ApplyMove(m Move) error {
	em, ok := g.findEngineMove(m)
	if !ok {
		return fmt.Errorf("%w: %v in %v", ErrIllegalMove, m, g.FEN())
	}
	next := g.pos.Update(&em)
	if next == nil {
		return fmt.Errorf("%w: %v rejected by engine", ErrIllegalMove, m)
	}
	g.history = append(g.history, undoFrame{move: m, engine: em, prev: g.pos})
	g.pos = next
	return nil
}

func (g *GameModel) UndoLastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	frame := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.pos = frame.prev
	return frame.move, true
}

func (g *GameModel) LastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	return g.history[len(g.history)-1].move, true
}

func (g *GameModel) LastCastlingRook() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	frame := g.history[len(g.history)-1]
	if !frame.engine.HasTag(chess.KingSideCastle) && !frame.engine.HasTag(chess.QueenSideCastle) {
		return Move{}, false
	}
	prevAt := func(sq Square) (Piece, bool) {
		return corePiece(frame.prev.Board().Piece(chess.Square(sq)))
	}
	return ResolveCastlingRook(prevAt, frame.move)
}

func (g *GameModel) FEN() string {
	return g.pos.String()
}

// findEngineMove membership-checks m against the engine's legal move
// enumeration and returns the engine's own move value, which carries the
// tags (castle, en passant) the widget needs.
func (g *GameModel) findEngineMove(m Move) (chess.Move, bool) {
	for _, em := range g.pos.ValidMoves() {
		if coreMove(&em) == m {
			return em, true
		}
	}
	return chess.Move{}, false
}

// ResolveCastlingRook resolves the rook displacement for a castling move
// given a board lookup and the king's move. The rook's destination is a
// function of the king's destination (g-file => f-file, c-file =>
// d-file); its source is found by scanning the king's back rank outward
// on the castling side, which tolerates free-castling placements where
// the rook is not in the corner. A rook already standing on its
// destination square resolves to a zero-length move; callers skip the
// animation segment in that case.
func ResolveCastlingRook(pieceAt func(Square) (Piece, bool), kingMove Move) (Move, bool) {
	king, ok := pieceAt(kingMove.From)
	if !ok || king.Kind != King {
		return Move{}, false
	}
	rank := kingMove.From.Rank()

	var rookTo Square
	var files []int
	switch kingMove.To.File() {
	case 6: // king side
		rookTo = NewSquare(5, rank)
		for f := 7; f > kingMove.From.File(); f-- {
			files = append(files, f)
		}
	case 2: // queen side
		rookTo = NewSquare(3, rank)
		for f := 0; f < kingMove.From.File(); f++ {
			files = append(files, f)
		}
	default:
		return Move{}, false
	}

	for _, f := range files {
		sq := NewSquare(f, rank)
		if p, ok := pieceAt(sq); ok && p.Kind == Rook && p.Color == king.Color {
			return Move{From: sq, To: rookTo}, true
		}
	}
	return Move{}, false
}

// squareAttacked reports whether any piece of the given color attacks
// the target square, using only the board lookup. Pins are irrelevant
// here: a pinned attacker still delivers check.
func squareAttacked(pieceAt func(Square) (Piece, bool), target Square, by Color) bool {
	file, rank := target.File(), target.Rank()

	has := func(f, r int, kinds ...PieceKind) bool {
		p, ok := pieceAt(NewSquare(f, r))
		if !ok || p.Color != by {
			return false
		}
		for _, k := range kinds {
			if p.Kind == k {
				return true
			}
		}
		return false
	}

	pawnRank := rank - 1
	if by == Black {
		pawnRank = rank + 1
	}
	if has(file-1, pawnRank, Pawn) || has(file+1, pawnRank, Pawn) {
		return true
	}

	knightJumps := [8][2]int{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	for _, j := range knightJumps {
		if has(file+j[0], rank+j[1], Knight) {
			return true
		}
	}

	directions := [8]struct {
		df, dr int
		diag   bool
	}{
		{1, 0, false}, {-1, 0, false}, {0, 1, false}, {0, -1, false},
		{1, 1, true}, {1, -1, true}, {-1, 1, true}, {-1, -1, true},
	}
	for _, d := range directions {
		if has(file+d.df, rank+d.dr, King) {
			return true
		}
		slider := Rook
		if d.diag {
			slider = Bishop
		}
		for f, r := file+d.df, rank+d.dr; NewSquare(f, r) != NoSquare; f, r = f+d.df, r+d.dr {
			p, ok := pieceAt(NewSquare(f, r))
			if !ok {
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

func coreColor(c chess.Color) Color {
	switch c {
	case chess.White:
		return White
	case chess.Black:
		return Black
	}
	return NoColor
}

func coreKind(t chess.PieceType) PieceKind {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoPieceKind
}

func corePiece(p chess.Piece) (Piece, bool) {
	if p == chess.NoPiece {
		return Piece{}, false
	}
	kind := coreKind(p.Type())
	if kind == NoPieceKind {
		return Piece{}, false
	}
	return Piece{Kind: kind, Color: coreColor(p.Color())}, true
}

func coreMove(m *chess.Move) Move {
	return Move{
		From:      Square(m.S1()),
		To:        Square(m.S2()),
		Promotion: coreKind(m.Promo()),
	}
}
