package chessboard

import (
	"sync"
	"testing"
	"time"
)

func TestAnimatorStepCount(t *testing.T) {
	a := animator{step: 0.05}
	a.beginLocked([]Segment{{}}, Forward)

	ticks := 0
	for !a.stepLocked() {
		ticks++
		if ticks > 100 {
			t.Fatal("animation never finished")
		}
	}
	// 0.05 per tick reaches 1.0 on the 20th step.
	if ticks != 19 {
		t.Fatalf("expected finish on tick 20, finished after %d prior ticks", ticks)
	}
	if a.active {
		t.Fatal("animator still active after finishing")
	}
	if a.segments != nil {
		t.Fatal("segments not cleared after finishing")
	}
}

func TestAnimatorCancel(t *testing.T) {
	a := animator{step: 0.25}
	a.beginLocked([]Segment{{}}, Forward)
	a.stepLocked()
	a.cancelLocked()
	if a.active {
		t.Fatal("animator active after cancel")
	}
	if a.stepLocked() {
		t.Fatal("cancelled animator reported a finish")
	}
}

func TestAnimatorInterpolation(t *testing.T) {
	a := animator{step: 0.5}
	seg := Segment{From: Point{X: 0, Y: 100}, To: Point{X: 200, Y: 100}}
	a.beginLocked([]Segment{seg}, Forward)

	a.stepLocked()
	p := a.pointFor(seg)
	if p.X != 100 || p.Y != 100 {
		t.Fatalf("expected midpoint (100,100), got (%v,%v)", p.X, p.Y)
	}
}

func TestManualTicker(t *testing.T) {
	var mt ManualTicker
	count := 0
	mt.Tick() // no-op before Start
	mt.Start(time.Millisecond, func() { count++ })
	if !mt.Active() {
		t.Fatal("expected active after Start")
	}
	mt.Tick()
	mt.Tick()
	if count != 2 {
		t.Fatalf("expected 2 ticks, got %d", count)
	}
	mt.Stop()
	mt.Tick()
	if count != 2 {
		t.Fatal("tick fired after Stop")
	}
	if mt.Active() {
		t.Fatal("expected inactive after Stop")
	}
}

func TestIntervalTickerFiresAndStops(t *testing.T) {
	var it IntervalTicker
	var mu sync.Mutex
	count := 0
	done := make(chan struct{})
	it.Start(time.Millisecond, func() {
		mu.Lock()
		count++
		if count == 3 {
			close(done)
		}
		mu.Unlock()
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker never fired three times")
	}
	it.Stop()
	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	final := count
	mu.Unlock()
	// One in-flight callback may land after Stop, no more.
	if final > after+1 {
		t.Fatalf("ticker kept firing after Stop: %d -> %d", after, final)
	}
}

func TestIntervalTickerRestart(t *testing.T) {
	var it IntervalTicker
	fired := make(chan int, 64)
	it.Start(time.Millisecond, func() { fired <- 1 })
	it.Start(time.Millisecond, func() { fired <- 2 })
	defer it.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case v := <-fired:
			if v == 2 {
				return
			}
		case <-deadline:
			t.Fatal("restarted ticker never fired")
		}
	}
}
