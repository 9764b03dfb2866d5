package chessboard

// Pointer handling implements a click-or-drag gesture on top of the
// selection state: pressing an own piece selects it and starts a
// provisional drag, releasing on a legal target plays the move, and
// releasing back on the origin (or off-board) converts the gesture into
// a plain click that keeps the selection. A press on a selected piece's
// legal target while no drag is in flight completes a two-click move.

// PointerDown handles a press at p in widget coordinates.
func (w *Widget) PointerDown(p Point) {
	w.mu.Lock()
	sq := w.layout.SquareAt(p)
	if sq == NoSquare {
		w.clearSelectionLocked()
		w.mu.Unlock()
		return
	}

	// Second click on a legal destination completes the move.
	if w.selected != NoSquare && !w.dragging {
		if m, ok := w.matchMoveLocked(sq); ok {
			w.mu.Unlock()
			if err := w.play(m, false, true); err != nil {
				log.Warn("interactive move rejected", "move", m.String(), "error", err)
			}
			return
		}
	}

	piece, ok := w.model.PieceAt(sq)
	if ok && piece.Color == w.model.SideToMove() {
		w.selected = sq
		w.legal = w.model.LegalMovesFrom(sq)
		w.dragging = true
		w.dragPos = p
		w.hover = NoSquare
		w.mu.Unlock()
		return
	}

	// Pressing an empty square or an opponent piece drops the selection.
	w.clearSelectionLocked()
	w.mu.Unlock()
}

// PointerMove handles pointer motion. While dragging it moves the
// floating piece and marks the legal target under it; otherwise it just
// tracks the hovered square for highlighting.
func (w *Widget) PointerMove(p Point) {
	w.mu.Lock()
	sq := w.layout.SquareAt(p)
	if w.dragging {
		w.dragPos = p
		if sq != NoSquare && w.isLegalTargetLocked(sq) {
			w.hover = sq
		} else {
			w.hover = NoSquare
		}
	} else {
		w.hover = sq
	}
	w.mu.Unlock()
}

// PointerUp handles a release at p. A release on a legal target plays
// the move; a release on the origin square keeps the selection (the
// gesture was a click); any other release keeps the selection too, so a
// missed drop is recoverable with a second click.
func (w *Widget) PointerUp(p Point) {
	w.mu.Lock()
	if !w.dragging {
		w.mu.Unlock()
		return
	}
	w.dragging = false
	w.dragPos = Point{}
	w.hover = NoSquare

	sq := w.layout.SquareAt(p)
	if sq != NoSquare && sq != w.selected {
		if m, ok := w.matchMoveLocked(sq); ok {
			w.mu.Unlock()
			if err := w.play(m, false, true); err != nil {
				log.Warn("interactive move rejected", "move", m.String(), "error", err)
			}
			return
		}
	}
	w.mu.Unlock()
}

// Selection returns the current selection state for rendering and for
// hosts that surface it.
func (w *Widget) Selection() SelectionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	targets := make([]Square, 0, len(w.legal))
	for _, m := range w.legal {
		targets = append(targets, m.To)
	}
	return SelectionState{
		Selected: w.selected,
		Targets:  dedupSquares(targets),
		Dragging: w.dragging,
		DragPos:  w.dragPos,
		Hover:    w.hover,
	}
}

// ClearSelection drops any selection and drag in flight.
func (w *Widget) ClearSelection() {
	w.mu.Lock()
	w.clearSelectionLocked()
	w.mu.Unlock()
}

func (w *Widget) isLegalTargetLocked(sq Square) bool {
	for _, m := range w.legal {
		if m.To == sq {
			return true
		}
	}
	return false
}

// matchMoveLocked finds the legal move from the selection to sq. When
// several candidates differ only in promotion piece, the resolver picks
// among them; without a resolver the first enumerated candidate wins.
func (w *Widget) matchMoveLocked(sq Square) (Move, bool) {
	var candidates []Move
	for _, m := range w.legal {
		if m.To == sq {
			candidates = append(candidates, m)
		}
	}
	switch {
	case len(candidates) == 0:
		return Move{}, false
	case len(candidates) == 1 || w.promoResolver == nil:
		return candidates[0], true
	}

	choices := make([]PieceKind, 0, len(candidates))
	for _, m := range candidates {
		choices = append(choices, m.Promotion)
	}
	picked := w.promoResolver(candidates[0].From, sq, choices)
	for _, m := range candidates {
		if m.Promotion == picked {
			return m, true
		}
	}
	return candidates[0], true
}

func dedupSquares(in []Square) []Square {
	seen := make(map[Square]bool, len(in))
	out := in[:0]
	for _, sq := range in {
		if !seen[sq] {
			seen[sq] = true
			out = append(out, sq)
		}
	}
	return out
}
