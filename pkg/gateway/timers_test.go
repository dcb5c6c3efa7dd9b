package gateway

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerRegistryAdd(t *testing.T) {
	ticker := newManualTicker()
	r := NewTimerRegistry(ticker.start)

	var fired int
	h := r.Add(func() { fired++ }, 45*time.Second)
	if h == 0 {
		t.Fatal("Add() returned the zero handle")
	}
	if !r.Active(h) {
		t.Error("Active() = false after Add")
	}
	if p, ok := r.Period(h); !ok || p != 45*time.Second {
		t.Errorf("Period() = %v, %v, want 45s, true", p, ok)
	}

	ticker.fireAll()
	ticker.fireAll()
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
}

func TestTimerRegistryRejectsInvalid(t *testing.T) {
	r := NewTimerRegistry(newManualTicker().start)

	if h := r.Add(func() {}, 0); h != 0 {
		t.Errorf("Add(period 0) = %d, want 0", h)
	}
	if h := r.Add(func() {}, -time.Second); h != 0 {
		t.Errorf("Add(negative period) = %d, want 0", h)
	}
	if h := r.Add(nil, time.Second); h != 0 {
		t.Errorf("Add(nil action) = %d, want 0", h)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestTimerRegistryHandlesAreUnique(t *testing.T) {
	r := NewTimerRegistry(newManualTicker().start)

	seen := make(map[TimerHandle]bool)
	for i := 0; i < 10; i++ {
		h := r.Add(func() {}, time.Second)
		if seen[h] {
			t.Fatalf("handle %d issued twice", h)
		}
		seen[h] = true
	}
}

func TestTimerRegistryRemove(t *testing.T) {
	ticker := newManualTicker()
	r := NewTimerRegistry(ticker.start)

	var fired int
	h := r.Add(func() { fired++ }, time.Second)
	tick := ticker.running()[0].tick

	r.Remove(h)
	if r.Active(h) {
		t.Error("Active() = true after Remove")
	}
	if len(ticker.running()) != 0 {
		t.Error("underlying ticker was not stopped")
	}

	// A tick that was already queued must not run the action.
	tick()
	if fired != 0 {
		t.Errorf("fired = %d after Remove, want 0", fired)
	}

	// Unknown and repeated removals are no-ops.
	r.Remove(h)
	r.Remove(TimerHandle(999))
}

func TestTimerRegistryCancelAll(t *testing.T) {
	ticker := newManualTicker()
	r := NewTimerRegistry(ticker.start)

	a := r.Add(func() {}, time.Second)
	b := r.Add(func() {}, 2*time.Second)
	r.CancelAll()

	if r.Active(a) || r.Active(b) {
		t.Error("timers still active after CancelAll")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if len(ticker.running()) != 0 {
		t.Errorf("%d tickers still running", len(ticker.running()))
	}
}

func TestLoopTicker(t *testing.T) {
	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	r := NewTimerRegistry(LoopTicker(loop))

	var fired atomic.Int32
	done := make(chan struct{})
	h := r.Add(func() {
		if fired.Add(1) == 3 {
			close(done)
		}
	}, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer fired %d times, want 3", fired.Load())
	}

	r.Remove(h)
	// Drain anything already posted, then make sure nothing else fires.
	loop.Do(func() {})
	n := fired.Load()
	time.Sleep(30 * time.Millisecond)
	loop.Do(func() {})
	if got := fired.Load(); got != n {
		t.Errorf("timer fired %d more times after Remove", got-n)
	}
}
