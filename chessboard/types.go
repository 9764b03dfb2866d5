// Package chessboard implements an embeddable interactive chessboard:
// a board model backed by an external rules engine, a pointer-driven
// selection/drag state machine, and a tick-driven animation engine.
// Rendering is left to the host, which draws whatever Frame reports.
package chessboard

import "fmt"

// Color is the side a piece belongs to.
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// PieceKind is the kind of a chess piece.
type PieceKind int8

const (
	NoPieceKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[PieceKind]byte{
	Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k',
}

func (k PieceKind) String() string {
	if b, ok := kindLetters[k]; ok {
		return string(b)
	}
	return ""
}

// Piece is an immutable piece value.
type Piece struct {
	Kind  PieceKind
	Color Color
}

func (p Piece) String() string {
	if p.Kind == NoPieceKind {
		return "-"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// Square identifies one of the 64 board cells, numbered a1=0 .. h8=63,
// matching the numbering of the wrapped rules engine.
type Square int8

// NoSquare is the absence of a square (pointer outside the board,
// nothing selected, and so on).
const NoSquare Square = -1

// NewSquare builds a square from zero-based file (a=0) and rank (1st=0)
// indices. Out-of-range indices yield NoSquare.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// File returns the zero-based file index (a=0 .. h=7).
func (sq Square) File() int { return int(sq) % 8 }

// Rank returns the zero-based rank index (1st=0 .. 8th=7).
func (sq Square) Rank() int { return int(sq) / 8 }

// Valid reports whether the square is on the board.
func (sq Square) Valid() bool { return sq >= 0 && sq < 64 }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("chessboard: invalid square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Move is a displacement from one square to another, with an optional
// promotion kind. A Move is only meaningful relative to a specific
// position; legality is decided by the rules engine behind the Model.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// String returns the move in UCI coordinate form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	return m.From.String() + m.To.String() + m.Promotion.String()
}

// ParseMove parses UCI coordinate form ("e2e4", "e7e8q").
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("chessboard: invalid move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, fmt.Errorf("chessboard: invalid move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("chessboard: invalid move %q", s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		for kind, letter := range kindLetters {
			if letter == s[4] && kind != King && kind != Pawn {
				m.Promotion = kind
			}
		}
		if m.Promotion == NoPieceKind {
			return Move{}, fmt.Errorf("chessboard: invalid promotion in %q", s)
		}
	}
	return m, nil
}
