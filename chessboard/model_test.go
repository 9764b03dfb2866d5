package chessboard

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustMove(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	if err != nil {
		t.Fatalf("parsing move %q: %v", s, err)
	}
	return m
}

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("parsing square %q: %v", s, err)
	}
	return sq
}

func TestStartingPosition(t *testing.T) {
	g := NewGameModel()
	if got := g.SideToMove(); got != White {
		t.Fatalf("expected white to move, got %v", got)
	}
	if got := len(g.LegalMoves()); got != 20 {
		t.Fatalf("expected 20 legal moves, got %d", got)
	}
	p, ok := g.PieceAt(mustSquare(t, "e1"))
	if !ok || p.Kind != King || p.Color != White {
		t.Fatalf("expected white king on e1, got %v ok=%v", p, ok)
	}
	if _, ok := g.PieceAt(mustSquare(t, "e4")); ok {
		t.Fatal("expected e4 empty")
	}
}

func TestLegalMovesFrom(t *testing.T) {
	g := NewGameModel()
	moves := g.LegalMovesFrom(mustSquare(t, "e2"))
	sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
	want := []Move{mustMove(t, "e2e3"), mustMove(t, "e2e4")}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Fatalf("legal moves from e2 mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAndUndo(t *testing.T) {
	g := NewGameModel()
	start := g.FEN()

	if err := g.ApplyMove(mustMove(t, "e2e4")); err != nil {
		t.Fatalf("applying e2e4: %v", err)
	}
	if got := g.SideToMove(); got != Black {
		t.Fatalf("expected black to move, got %v", got)
	}
	if _, ok := g.PieceAt(mustSquare(t, "e2")); ok {
		t.Fatal("expected e2 vacated")
	}
	last, ok := g.LastMove()
	if !ok || last != mustMove(t, "e2e4") {
		t.Fatalf("expected last move e2e4, got %v ok=%v", last, ok)
	}

	m, ok := g.UndoLastMove()
	if !ok || m != mustMove(t, "e2e4") {
		t.Fatalf("expected undo of e2e4, got %v ok=%v", m, ok)
	}
	if got := g.FEN(); got != start {
		t.Fatalf("undo did not restore position:\nwant %s\ngot  %s", start, got)
	}
	if _, ok := g.UndoLastMove(); ok {
		t.Fatal("expected no further history")
	}
}

func TestApplyIllegalMove(t *testing.T) {
	g := NewGameModel()
	before := g.FEN()
	err := g.ApplyMove(mustMove(t, "e2e5"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if got := g.FEN(); got != before {
		t.Fatal("illegal move mutated the position")
	}
	if _, ok := g.LastMove(); ok {
		t.Fatal("illegal move entered history")
	}
}

func TestUndoDeepHistory(t *testing.T) {
	g := NewGameModel()
	start := g.FEN()
	line := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6"}
	fens := []string{start}
	for _, s := range line {
		if err := g.ApplyMove(mustMove(t, s)); err != nil {
			t.Fatalf("applying %s: %v", s, err)
		}
		fens = append(fens, g.FEN())
	}
	for i := len(line) - 1; i >= 0; i-- {
		m, ok := g.UndoLastMove()
		if !ok || m != mustMove(t, line[i]) {
			t.Fatalf("undo %d: got %v ok=%v", i, m, ok)
		}
		if got := g.FEN(); got != fens[i] {
			t.Fatalf("undo %d restored wrong position:\nwant %s\ngot  %s", i, fens[i], got)
		}
	}
}

func TestPromotionMoves(t *testing.T) {
	g, err := NewGameModelFEN("8/4P1k1/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	moves := g.LegalMovesFrom(mustSquare(t, "e7"))
	kinds := make(map[PieceKind]bool)
	for _, m := range moves {
		kinds[m.Promotion] = true
	}
	for _, k := range []PieceKind{Queen, Rook, Bishop, Knight} {
		if !kinds[k] {
			t.Errorf("missing promotion to %v", k)
		}
	}
	fenBefore := g.FEN()
	if err := g.ApplyMove(mustMove(t, "e7e8n")); err != nil {
		t.Fatalf("underpromotion rejected: %v", err)
	}
	p, ok := g.PieceAt(mustSquare(t, "e8"))
	if !ok || p.Kind != Knight || p.Color != White {
		t.Fatalf("expected white knight on e8, got %v ok=%v", p, ok)
	}
	g.UndoLastMove()
	if got := g.FEN(); got != fenBefore {
		t.Fatalf("undo of promotion restored wrong position:\nwant %s\ngot  %s", fenBefore, got)
	}
}

func TestCastlingDetection(t *testing.T) {
	g, err := NewGameModelFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}

	short := mustMove(t, "e1g1")
	if !g.IsCastling(short) {
		t.Fatal("e1g1 not detected as castling")
	}
	rook, ok := g.CastlingRookMove(short)
	if !ok || rook != mustMove(t, "h1f1") {
		t.Fatalf("expected rook h1f1, got %v ok=%v", rook, ok)
	}

	long := mustMove(t, "e1c1")
	rook, ok = g.CastlingRookMove(long)
	if !ok || rook != mustMove(t, "a1d1") {
		t.Fatalf("expected rook a1d1, got %v ok=%v", rook, ok)
	}

	if g.IsCastling(mustMove(t, "e1f1")) {
		t.Fatal("king step detected as castling")
	}
}

func TestLastCastlingRook(t *testing.T) {
	g, err := NewGameModelFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	fenStart := g.FEN()

	if err := g.ApplyMove(mustMove(t, "e1g1")); err != nil {
		t.Fatalf("castling rejected: %v", err)
	}
	fenAfterWhite := g.FEN()
	rook, ok := g.LastCastlingRook()
	if !ok || rook != mustMove(t, "h1f1") {
		t.Fatalf("expected rook h1f1 after the fact, got %v ok=%v", rook, ok)
	}

	if err := g.ApplyMove(mustMove(t, "e8c8")); err != nil {
		t.Fatalf("black castling rejected: %v", err)
	}
	rook, ok = g.LastCastlingRook()
	if !ok || rook != mustMove(t, "a8d8") {
		t.Fatalf("expected rook a8d8, got %v ok=%v", rook, ok)
	}

	g.UndoLastMove()
	if got := g.FEN(); got != fenAfterWhite {
		t.Fatalf("undo of black castling restored wrong position:\nwant %s\ngot  %s", fenAfterWhite, got)
	}
	g.UndoLastMove()
	if got := g.FEN(); got != fenStart {
		t.Fatalf("undo of white castling restored wrong position:\nwant %s\ngot  %s", fenStart, got)
	}
	if _, ok := g.LastCastlingRook(); ok {
		t.Fatal("expected no castling rook with empty history")
	}
}

func TestResolveCastlingRook(t *testing.T) {
	board := func(pieces map[string]Piece) func(Square) (Piece, bool) {
		bySquare := make(map[Square]Piece, len(pieces))
		for s, p := range pieces {
			sq, err := ParseSquare(s)
			if err != nil {
				t.Fatalf("bad square %q", s)
			}
			bySquare[sq] = p
		}
		return func(sq Square) (Piece, bool) {
			p, ok := bySquare[sq]
			return p, ok
		}
	}

	t.Run("standard short", func(t *testing.T) {
		at := board(map[string]Piece{
			"e1": {King, White},
			"h1": {Rook, White},
		})
		rook, ok := ResolveCastlingRook(at, mustMove(t, "e1g1"))
		if !ok || rook != mustMove(t, "h1f1") {
			t.Fatalf("got %v ok=%v", rook, ok)
		}
	})

	t.Run("standard long", func(t *testing.T) {
		at := board(map[string]Piece{
			"e1": {King, White},
			"a1": {Rook, White},
		})
		rook, ok := ResolveCastlingRook(at, mustMove(t, "e1c1"))
		if !ok || rook != mustMove(t, "a1d1") {
			t.Fatalf("got %v ok=%v", rook, ok)
		}
	})

	t.Run("rook inside corner", func(t *testing.T) {
		at := board(map[string]Piece{
			"e1": {King, White},
			"g1": {Rook, White},
		})
		rook, ok := ResolveCastlingRook(at, mustMove(t, "e1g1"))
		if !ok || rook != mustMove(t, "g1f1") {
			t.Fatalf("got %v ok=%v", rook, ok)
		}
	})

	t.Run("rook already on destination", func(t *testing.T) {
		at := board(map[string]Piece{
			"e1": {King, White},
			"f1": {Rook, White},
		})
		rook, ok := ResolveCastlingRook(at, mustMove(t, "e1g1"))
		if !ok {
			t.Fatal("expected resolution")
		}
		if rook.From != rook.To {
			t.Fatalf("expected zero-length rook move, got %v", rook)
		}
	})

	t.Run("black long", func(t *testing.T) {
		at := board(map[string]Piece{
			"e8": {King, Black},
			"a8": {Rook, Black},
		})
		rook, ok := ResolveCastlingRook(at, mustMove(t, "e8c8"))
		if !ok || rook != mustMove(t, "a8d8") {
			t.Fatalf("got %v ok=%v", rook, ok)
		}
	})

	t.Run("not a castling shape", func(t *testing.T) {
		at := board(map[string]Piece{"e1": {King, White}})
		if _, ok := ResolveCastlingRook(at, mustMove(t, "e1f1")); ok {
			t.Fatal("expected no resolution")
		}
	})

	t.Run("mover is not a king", func(t *testing.T) {
		at := board(map[string]Piece{"e1": {Queen, White}})
		if _, ok := ResolveCastlingRook(at, mustMove(t, "e1g1")); ok {
			t.Fatal("expected no resolution")
		}
	})
}

func TestEnPassant(t *testing.T) {
	g, err := NewGameModelFEN("4k3/8/8/8/4p3/8/3P4/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	if err := g.ApplyMove(mustMove(t, "d2d4")); err != nil {
		t.Fatalf("applying d2d4: %v", err)
	}
	if err := g.ApplyMove(mustMove(t, "e4d3")); err != nil {
		t.Fatalf("en passant rejected: %v", err)
	}
	if _, ok := g.PieceAt(mustSquare(t, "d4")); ok {
		t.Fatal("captured pawn still on d4")
	}
	// Undo must resurrect the captured pawn.
	g.UndoLastMove()
	p, ok := g.PieceAt(mustSquare(t, "d4"))
	if !ok || p.Kind != Pawn || p.Color != White {
		t.Fatalf("expected white pawn restored on d4, got %v ok=%v", p, ok)
	}
}

func TestKingSquareAndCheck(t *testing.T) {
	g, err := NewGameModelFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	sq, ok := g.KingSquare(Black)
	if !ok || sq != mustSquare(t, "e8") {
		t.Fatalf("expected black king on e8, got %v ok=%v", sq, ok)
	}
	if g.InCheck() {
		t.Fatal("white is not in check")
	}
	if err := g.ApplyMove(mustMove(t, "a1a8")); err != nil {
		t.Fatalf("applying a1a8: %v", err)
	}
	if !g.InCheck() {
		t.Fatal("black should be in check after Ra8")
	}
}

func TestInCheckDetection(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want bool
	}{
		{"starting position", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", false},
		{"rook on open file", "4k3/8/8/8/8/8/8/R3K3 b - - 0 1", false},
		{"knight check", "4k3/8/3N4/8/8/8/8/4K3 b - - 0 1", true},
		{"pawn check", "4k3/3P4/8/8/8/8/8/4K3 b - - 0 1", true},
		{"pawn does not attack straight ahead", "4k3/8/8/4p3/4K3/8/8/8 w - - 0 1", false},
		{"bishop on long diagonal", "7b/8/8/8/8/8/8/K7 w - - 0 1", true},
		{"bishop blocked", "7b/8/8/8/3P4/8/8/K7 w - - 0 1", false},
		{"queen on rank", "4k3/8/8/8/8/8/8/q3K3 w - - 0 1", true},
		{"own rook is no check", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGameModelFEN(tc.fen)
			if err != nil {
				t.Fatalf("parsing FEN: %v", err)
			}
			if got := g.InCheck(); got != tc.want {
				t.Fatalf("InCheck() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInCheckAcrossApplyAndUndo(t *testing.T) {
	g, err := NewGameModelFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	if g.InCheck() {
		t.Fatal("no check before the rook lift")
	}
	if err := g.ApplyMove(mustMove(t, "a1a8")); err != nil {
		t.Fatalf("applying a1a8: %v", err)
	}
	if !g.InCheck() {
		t.Fatal("black should be in check after Ra8")
	}
	g.UndoLastMove()
	if g.InCheck() {
		t.Fatal("check state survived the undo")
	}
}

func TestMoveParsing(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want string
	}{
		{"e2e4", true, "e2e4"},
		{"e7e8q", true, "e7e8q"},
		{"a1h8", true, "a1h8"},
		{"e2", false, ""},
		{"e2e9", false, ""},
		{"i2e4", false, ""},
		{"e7e8k", false, ""},
		{"e7e8p", false, ""},
	}
	for _, tc := range cases {
		m, err := ParseMove(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseMove(%q): err=%v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && m.String() != tc.want {
			t.Errorf("ParseMove(%q) = %v, want %v", tc.in, m, tc.want)
		}
	}
}
