package chessboard

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

var log = slog.Default().With("package", "chessboard")

// Widget is the interactive board. It owns the selection/drag state and
// the animation task, and routes every mutation through its Model. All
// methods are safe to call from the host's event loop; entry points are
// serialized internally so an IntervalTicker firing on a background
// goroutine cannot interleave with pointer handling.
type Widget struct {
	mu       sync.Mutex
	model    Model
	layout   Layout
	ticker   Ticker
	interval time.Duration
	anim     animator

	// gen invalidates animation starts that were superseded while the
	// widget lock was released for event emission.
	gen uint64

	selected Square
	legal    []Move
	dragging bool
	dragPos  Point
	hover    Square

	promoResolver func(from, to Square, choices []PieceKind) PieceKind

	movePlayed   []func(Move, MoveInfo)
	moveUndone   []func(Move)
	animFinished []func()
}

// Option configures a Widget at construction.
type Option func(*Widget)

// WithModel replaces the default starting-position model.
func WithModel(m Model) Option {
	return func(w *Widget) { w.model = m }
}

// WithSize sets the widget area the board is centered in.
func WithSize(width, height float64) Option {
	return func(w *Widget) {
		w.layout.Width = width
		w.layout.Height = height
	}
}

// WithFlipped sets the initial orientation.
func WithFlipped(flipped bool) Option {
	return func(w *Widget) { w.layout.Flipped = flipped }
}

// WithTicker injects the animation tick source.
func WithTicker(t Ticker) Option {
	return func(w *Widget) { w.ticker = t }
}

// WithAnimation overrides the tick interval and per-tick progress step.
func WithAnimation(interval time.Duration, step float64) Option {
	return func(w *Widget) {
		w.interval = interval
		w.anim.step = step
	}
}

// WithPromotionResolver installs a host callback that picks among
// promotion candidates when a gesture matches several legal moves
// differing only in promotion piece. Without it the first enumerated
// candidate wins.
func WithPromotionResolver(fn func(from, to Square, choices []PieceKind) PieceKind) Option {
	return func(w *Widget) { w.promoResolver = fn }
}

// NewWidget returns a widget at the standard starting position with a
// 400x400 area, unflipped, animating on an IntervalTicker.
func NewWidget(opts ...Option) *Widget {
	w := &Widget{
		model:    NewGameModel(),
		layout:   Layout{Width: 400, Height: 400},
		ticker:   &IntervalTicker{},
		interval: DefaultTickInterval,
		anim:     animator{step: DefaultStep},
		selected: NoSquare,
		hover:    NoSquare,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetSize updates the widget area. Selection survives a resize; an
// in-flight animation would keep interpolating toward stale pixel
// targets, so it is cancelled instead.
func (w *Widget) SetSize(width, height float64) {
	w.mu.Lock()
	w.layout.Width = width
	w.layout.Height = height
	w.cancelAnimationLocked()
	w.mu.Unlock()
}

// SetFlipped sets the board orientation.
func (w *Widget) SetFlipped(flipped bool) {
	w.mu.Lock()
	w.layout.Flipped = flipped
	w.cancelAnimationLocked()
	w.mu.Unlock()
}

// Flipped reports the current orientation.
func (w *Widget) Flipped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout.Flipped
}

// Layout returns the current coordinate mapping.
func (w *Widget) Layout() Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout
}

// SetModel replaces the whole position. Selection and animation reset.
func (w *Widget) SetModel(m Model) {
	w.mu.Lock()
	w.model = m
	w.clearSelectionLocked()
	w.cancelAnimationLocked()
	w.mu.Unlock()
}

// SetPositionFEN replaces the position from a FEN string.
func (w *Widget) SetPositionFEN(fen string) error {
	m, err := NewGameModelFEN(fen)
	if err != nil {
		return err
	}
	w.SetModel(m)
	return nil
}

// Reset returns the board to the standard starting position.
func (w *Widget) Reset() {
	w.SetModel(NewGameModel())
}

// FEN returns the current position.
func (w *Widget) FEN() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model.FEN()
}

// Model returns the underlying board model for host-side queries.
// Mutate only through the widget, or its state and the drawn board will
// disagree.
func (w *Widget) Model() Model {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model
}

// PlayMove applies a caller-supplied move, optionally animated. An
// illegal move is a host fault and returns ErrIllegalMove.
func (w *Widget) PlayMove(m Move, animate bool) error {
	return w.play(m, animate, false)
}

// play is the single finalization path for interactive and programmatic
// moves. Ordering is deliberate and load-bearing: the model mutates
// first, MovePlayed observers run second, and the first animation tick
// can only happen after that.
func (w *Widget) play(m Move, animate, interactive bool) error {
	w.mu.Lock()
	w.clearSelectionLocked()
	w.cancelAnimationLocked()

	var segments []Segment
	if animate {
		segments = w.moveSegmentsLocked(m)
	}
	if err := w.model.ApplyMove(m); err != nil {
		w.mu.Unlock()
		log.Warn("move rejected", "move", m.String(), "error", err)
		return err
	}
	gen := w.gen
	observers := slices.Clone(w.movePlayed)
	w.mu.Unlock()

	info := MoveInfo{Interactive: interactive}
	for _, fn := range observers {
		fn(m, info)
	}

	if animate && len(segments) > 0 {
		w.startAnimation(gen, segments, Forward)
	}
	return nil
}

// Undo pops the most recent move, optionally animating the pieces back.
// It reports false when there is nothing to undo.
func (w *Widget) Undo(animate bool) (Move, bool) {
	w.mu.Lock()
	w.clearSelectionLocked()
	w.cancelAnimationLocked()

	last, ok := w.model.LastMove()
	if !ok {
		w.mu.Unlock()
		return Move{}, false
	}
	var segments []Segment
	if animate {
		segments = w.undoSegmentsLocked(last)
	}
	m, ok := w.model.UndoLastMove()
	if !ok {
		w.mu.Unlock()
		return Move{}, false
	}
	gen := w.gen
	observers := slices.Clone(w.moveUndone)
	w.mu.Unlock()

	for _, fn := range observers {
		fn(m)
	}

	if animate && len(segments) > 0 {
		w.startAnimation(gen, segments, Backward)
	}
	return m, true
}

// moveSegmentsLocked builds the animation task for a forward move from
// the pre-mutation board: the moving piece plus, for castling, the rook
// (skipped when the rook already stands on its destination, as free
// castling allows).
func (w *Widget) moveSegmentsLocked(m Move) []Segment {
	piece, ok := w.model.PieceAt(m.From)
	if !ok {
		return nil
	}
	segments := []Segment{{
		Piece:   piece,
		From:    w.layout.SquareCenter(m.From),
		To:      w.layout.SquareCenter(m.To),
		Settles: m.To,
	}}
	if rook, ok := w.model.CastlingRookMove(m); ok && rook.From != rook.To {
		if rp, ok := w.model.PieceAt(rook.From); ok {
			segments = append(segments, Segment{
				Piece:   rp,
				From:    w.layout.SquareCenter(rook.From),
				To:      w.layout.SquareCenter(rook.To),
				Settles: rook.To,
			})
		}
	}
	return segments
}

// undoSegmentsLocked builds the backward task before the pop: pieces
// travel from their current squares back to their restored squares,
// which are excluded from the static layer until the task settles.
func (w *Widget) undoSegmentsLocked(last Move) []Segment {
	piece, ok := w.model.PieceAt(last.To)
	if !ok {
		return nil
	}
	segments := []Segment{{
		Piece:   piece,
		From:    w.layout.SquareCenter(last.To),
		To:      w.layout.SquareCenter(last.From),
		Settles: last.From,
	}}
	if rook, ok := w.model.LastCastlingRook(); ok && rook.From != rook.To {
		if rp, ok := w.model.PieceAt(rook.To); ok {
			segments = append(segments, Segment{
				Piece:   rp,
				From:    w.layout.SquareCenter(rook.To),
				To:      w.layout.SquareCenter(rook.From),
				Settles: rook.From,
			})
		}
	}
	return segments
}

// startAnimation arms the animator and starts the tick source, unless a
// newer operation superseded this one while observers ran. Start happens
// outside the lock, so a cancel can land between arming and Start; the
// second gen check catches that and stops the freshly started ticker.
func (w *Widget) startAnimation(gen uint64, segments []Segment, dir Direction) {
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return
	}
	w.anim.beginLocked(segments, dir)
	ticker, interval := w.ticker, w.interval
	w.mu.Unlock()
	ticker.Start(interval, w.animTick)
	w.mu.Lock()
	if w.gen != gen {
		w.ticker.Stop()
	}
	w.mu.Unlock()
}

func (w *Widget) animTick() {
	w.mu.Lock()
	finished := w.anim.stepLocked()
	var observers []func()
	if finished {
		w.ticker.Stop()
		observers = slices.Clone(w.animFinished)
	} else if !w.anim.active {
		// Stray tick with no task in flight: the source must not idle.
		w.ticker.Stop()
	}
	w.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// cancelAnimationLocked discards any in-flight task without firing its
// completion and stops the tick source so it never idles.
func (w *Widget) cancelAnimationLocked() {
	w.gen++
	w.anim.cancelLocked()
	w.ticker.Stop()
}

// Animating reports whether an animation task is in flight.
func (w *Widget) Animating() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.anim.active
}

func (w *Widget) clearSelectionLocked() {
	w.selected = NoSquare
	w.legal = nil
	w.dragging = false
	w.dragPos = Point{}
	w.hover = NoSquare
}
