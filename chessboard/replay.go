package chessboard

import "sync"

// Replay is a history navigator layered on a widget: it records every
// move played and allows stepping backward and forward through the game
// with animation. Playing a new move while rewound truncates the
// discarded future, as in any game viewer.
type Replay struct {
	mu      sync.Mutex
	widget  *Widget
	history []Move
	index   int

	// navigating suppresses recording of the widget events that the
	// navigator's own Next/Prev calls produce.
	navigating bool
}

// NewReplay attaches a navigator to the widget. Moves already on the
// widget's model are not retroactively recorded; attach before playing.
func NewReplay(w *Widget) *Replay {
	r := &Replay{widget: w}
	w.OnMovePlayed(func(m Move, _ MoveInfo) { r.record(m) })
	w.OnMoveUndone(func(Move) { r.unrecord() })
	return r
}

func (r *Replay) record(m Move) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.navigating {
		return
	}
	// A new move from a rewound position discards the old future.
	r.history = append(r.history[:r.index], m)
	r.index = len(r.history)
}

func (r *Replay) unrecord() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.navigating {
		return
	}
	if r.index > 0 {
		r.index--
		r.history = r.history[:r.index]
	}
}

// Reset drops the recorded history, for use when the widget's position
// is replaced outright.
func (r *Replay) Reset() {
	r.mu.Lock()
	r.history = nil
	r.index = 0
	r.mu.Unlock()
}

// Prev steps one move back, animated. It reports false at the start.
func (r *Replay) Prev() bool {
	r.mu.Lock()
	if r.index == 0 {
		r.mu.Unlock()
		return false
	}
	r.index--
	r.navigating = true
	r.mu.Unlock()

	_, ok := r.widget.Undo(true)

	r.mu.Lock()
	r.navigating = false
	if !ok {
		r.index++
	}
	r.mu.Unlock()
	return ok
}

// Next replays one move forward, animated. It reports false at the end.
func (r *Replay) Next() bool {
	r.mu.Lock()
	if r.index >= len(r.history) {
		r.mu.Unlock()
		return false
	}
	m := r.history[r.index]
	r.index++
	r.navigating = true
	r.mu.Unlock()

	err := r.widget.PlayMove(m, true)

	r.mu.Lock()
	r.navigating = false
	if err != nil {
		r.index--
	}
	r.mu.Unlock()
	return err == nil
}

// First rewinds to the starting position.
func (r *Replay) First() {
	for r.Prev() {
	}
}

// Last replays to the end of the recorded history.
func (r *Replay) Last() {
	for r.Next() {
	}
}

// AtStart reports whether the navigator is at the starting position.
func (r *Replay) AtStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index == 0
}

// AtEnd reports whether the navigator is at the latest recorded move.
func (r *Replay) AtEnd() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index == len(r.history)
}

// Length returns the number of recorded moves.
func (r *Replay) Length() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// Index returns the number of moves currently applied on the board.
func (r *Replay) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// History returns a copy of the recorded moves.
func (r *Replay) History() []Move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Move(nil), r.history...)
}
