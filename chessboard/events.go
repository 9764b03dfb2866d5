package chessboard

// MoveInfo carries metadata about a completed move. Interactive is true
// for moves finalized by pointer gestures, false for PlayMove.
type MoveInfo struct {
	Interactive bool
}

// SelectionState is a snapshot of the selection and drag for rendering.
type SelectionState struct {
	Selected Square
	Targets  []Square
	Dragging bool
	DragPos  Point
	Hover    Square
}

// OnMovePlayed registers an observer called after every move has been
// applied to the model, before the first animation tick. Observers run
// without the widget lock held, so they may call back into the widget.
func (w *Widget) OnMovePlayed(fn func(Move, MoveInfo)) {
	w.mu.Lock()
	w.movePlayed = append(w.movePlayed, fn)
	w.mu.Unlock()
}

// OnMoveUndone registers an observer called after an undo has restored
// the model, before the first animation tick.
func (w *Widget) OnMoveUndone(fn func(Move)) {
	w.mu.Lock()
	w.moveUndone = append(w.moveUndone, fn)
	w.mu.Unlock()
}

// OnAnimationFinished registers an observer called when an animation
// task runs to completion. Cancelled tasks never fire it.
func (w *Widget) OnAnimationFinished(fn func()) {
	w.mu.Lock()
	w.animFinished = append(w.animFinished, fn)
	w.mu.Unlock()
}
