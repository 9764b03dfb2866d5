package chessboard

import (
	"sync"
	"time"
)

// Animation pacing: a fixed progress step per tick, so total duration is
// tick interval x (1/step). The defaults settle in ~20 ticks at ~60 Hz,
// about a third of a second.
const (
	DefaultTickInterval = 16 * time.Millisecond
	DefaultStep         = 0.05
)

// Direction tags an animation task as a forward move or an undo.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Segment is one piece's straight-line path within an animation task.
// Settles is the square that will hold the piece once the task finishes;
// the static piece layer must not draw that square while the task is in
// flight, or the piece would appear twice.
type Segment struct {
	Piece   Piece
	From    Point
	To      Point
	Settles Square
}

// Ticker is the periodic tick source driving animation progress. It is
// injected so hosts with their own frame loop can step animations
// manually and tests never wait on wall-clock time. Start replaces any
// previous schedule; the ticker is always stopped when no animation is
// active.
type Ticker interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// IntervalTicker is a time.Ticker-backed Ticker for hosts without a
// frame loop. Callbacks fire on a background goroutine; the widget
// serializes them internally.
type IntervalTicker struct {
	mu   sync.Mutex
	stop chan struct{}
}

func (t *IntervalTicker) Start(interval time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	stop := make(chan struct{})
	t.stop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

func (t *IntervalTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *IntervalTicker) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// ManualTicker is a Ticker stepped explicitly by the caller: tests, and
// hosts whose frame loop already ticks at a fixed rate.
type ManualTicker struct {
	mu sync.Mutex
	fn func()
}

func (t *ManualTicker) Start(_ time.Duration, fn func()) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.fn = nil
	t.mu.Unlock()
}

// Tick fires one scheduled tick, if any.
func (t *ManualTicker) Tick() {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Active reports whether a tick callback is currently scheduled.
func (t *ManualTicker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fn != nil
}

// animator holds the single in-flight animation task. At most one task
// is active; beginning a new one discards the old task without
// completing it. All methods are called with the widget lock held.
type animator struct {
	step      float64
	segments  []Segment
	direction Direction
	progress  float64
	active    bool
}

func (a *animator) beginLocked(segments []Segment, dir Direction) {
	a.segments = segments
	a.direction = dir
	a.progress = 0
	a.active = true
}

func (a *animator) cancelLocked() {
	a.segments = nil
	a.active = false
	a.progress = 0
}

// stepLocked advances progress by one fixed step and reports whether the
// task just finished. A finished task clears itself: the board is
// rendered purely from the static position afterwards.
func (a *animator) stepLocked() bool {
	if !a.active {
		return false
	}
	a.progress += a.step
	// Accumulated float error must not cost an extra tick.
	if a.progress >= 1-1e-9 {
		a.progress = 1
		a.active = false
		a.segments = nil
		return true
	}
	return false
}

// pointFor linearly interpolates a segment at the current progress.
func (a *animator) pointFor(seg Segment) Point {
	return Point{
		X: seg.From.X + (seg.To.X-seg.From.X)*a.progress,
		Y: seg.From.Y + (seg.To.Y-seg.From.Y)*a.progress,
	}
}
