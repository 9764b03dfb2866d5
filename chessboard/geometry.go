package chessboard

import "math"

// Point is a position in widget coordinates (pixels or any unit the host
// uses; the board only cares about ratios).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in widget coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p falls inside the rectangle. The right and
// bottom edges are exclusive so adjacent cells never both claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Layout maps between widget coordinates and board squares. The board is
// always the largest centered square that fits the widget area; pointer
// positions outside it resolve to NoSquare, never to a clamped edge
// square.
type Layout struct {
	Width   float64
	Height  float64
	Flipped bool
}

// BoardRect returns the centered square board region, side = min(w, h).
func (l Layout) BoardRect() Rect {
	s := math.Min(l.Width, l.Height)
	return Rect{X: (l.Width - s) / 2, Y: (l.Height - s) / 2, W: s, H: s}
}

// SquareSize returns the side length of one board cell.
func (l Layout) SquareSize() float64 {
	return l.BoardRect().W / 8
}

// SquareAt resolves a pointer position to a square, honoring
// orientation. Points outside the board region return NoSquare.
func (l Layout) SquareAt(p Point) Square {
	rect := l.BoardRect()
	if rect.W <= 0 || !rect.Contains(p) {
		return NoSquare
	}
	size := rect.W / 8
	col := int((p.X - rect.X) / size)
	row := int((p.Y - rect.Y) / size)
	if col < 0 || col > 7 || row < 0 || row > 7 {
		return NoSquare
	}
	if l.Flipped {
		return NewSquare(7-col, row)
	}
	return NewSquare(col, 7-row)
}

// SquareOrigin returns the top-left corner of a square's cell.
func (l Layout) SquareOrigin(sq Square) Point {
	rect := l.BoardRect()
	size := rect.W / 8
	var col, row int
	if l.Flipped {
		col, row = 7-sq.File(), sq.Rank()
	} else {
		col, row = sq.File(), 7-sq.Rank()
	}
	return Point{X: rect.X + float64(col)*size, Y: rect.Y + float64(row)*size}
}

// SquareCenter returns the center point of a square's cell. Animation
// segments interpolate between square centers.
func (l Layout) SquareCenter(sq Square) Point {
	o := l.SquareOrigin(sq)
	half := l.SquareSize() / 2
	return Point{X: o.X + half, Y: o.Y + half}
}
