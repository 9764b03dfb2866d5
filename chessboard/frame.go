package chessboard

// FramePiece is a piece drawn on its home square.
type FramePiece struct {
	Square Square
	Piece  Piece
	// Faded marks the drag origin: the piece stays visible in place
	// while a copy floats under the pointer.
	Faded bool
}

// OverlayPiece is a piece drawn at a free position, above the static
// layer: the dragged piece, or an animation segment mid-flight.
type OverlayPiece struct {
	Piece Piece
	Pos   Point
}

// Frame is everything a renderer needs for one draw pass. It is a value
// snapshot; the host may keep it across the widget lock without racing.
type Frame struct {
	Board      Rect
	SquareSize float64
	Flipped    bool

	// Pieces is the static layer. Squares a pending animation will
	// settle on are excluded so pieces never appear twice.
	Pieces []FramePiece

	Selected     Square
	Hover        Square
	LegalTargets []Square
	LastFrom     Square
	LastTo       Square
	CheckSquare  Square

	Drag      *OverlayPiece
	Animating []OverlayPiece
}

// Frame snapshots the widget for rendering.
func (w *Widget) Frame() Frame {
	w.mu.Lock()
	defer w.mu.Unlock()

	f := Frame{
		Board:       w.layout.BoardRect(),
		SquareSize:  w.layout.SquareSize(),
		Flipped:     w.layout.Flipped,
		Selected:    w.selected,
		Hover:       w.hover,
		LastFrom:    NoSquare,
		LastTo:      NoSquare,
		CheckSquare: NoSquare,
	}

	for _, m := range w.legal {
		f.LegalTargets = append(f.LegalTargets, m.To)
	}
	f.LegalTargets = dedupSquares(f.LegalTargets)

	if last, ok := w.model.LastMove(); ok {
		f.LastFrom, f.LastTo = last.From, last.To
	}
	if w.model.InCheck() {
		if sq, ok := w.model.KingSquare(w.model.SideToMove()); ok {
			f.CheckSquare = sq
		}
	}

	skip := make(map[Square]bool)
	if w.anim.active {
		for _, seg := range w.anim.segments {
			skip[seg.Settles] = true
			f.Animating = append(f.Animating, OverlayPiece{
				Piece: seg.Piece,
				Pos:   w.anim.pointFor(seg),
			})
		}
	}

	for sq := Square(0); sq < 64; sq++ {
		if skip[sq] {
			continue
		}
		piece, ok := w.model.PieceAt(sq)
		if !ok {
			continue
		}
		f.Pieces = append(f.Pieces, FramePiece{
			Square: sq,
			Piece:  piece,
			Faded:  w.dragging && sq == w.selected,
		})
	}

	if w.dragging && w.selected != NoSquare {
		if piece, ok := w.model.PieceAt(w.selected); ok {
			f.Drag = &OverlayPiece{Piece: piece, Pos: w.dragPos}
		}
	}
	return f
}
