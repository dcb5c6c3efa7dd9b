package gateway

import (
	"sync"
	"time"
)

// TickerFunc starts calling tick every period until the returned stop
// function is called. Implementations must not call tick synchronously.
type TickerFunc func(period time.Duration, tick func()) (stop func())

// TimerHandle identifies a registered timer. The zero handle is never issued.
type TimerHandle uint64

type timerEntry struct {
	period time.Duration
	stop   func()
}

// TimerRegistry is the client-wide set of recurring timers. It is the only
// shared mutable state in the client and is safe for concurrent use.
type TimerRegistry struct {
	mu     sync.Mutex
	start  TickerFunc
	next   TimerHandle
	timers map[TimerHandle]timerEntry
}

// NewTimerRegistry creates a registry that starts timers with start.
func NewTimerRegistry(start TickerFunc) *TimerRegistry {
	return &TimerRegistry{
		start:  start,
		timers: make(map[TimerHandle]timerEntry),
	}
}

// Add starts a recurring timer and returns its handle.
// A non-positive period is rejected with the zero handle.
func (r *TimerRegistry) Add(action func(), period time.Duration) TimerHandle {
	if period <= 0 || action == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	h := r.next
	stop := r.start(period, func() {
		// A tick may already be queued when the timer is removed.
		if r.Active(h) {
			action()
		}
	})
	r.timers[h] = timerEntry{period: period, stop: stop}
	return h
}

// Remove stops the timer and forgets it. Unknown handles are ignored.
func (r *TimerRegistry) Remove(h TimerHandle) {
	r.mu.Lock()
	entry, ok := r.timers[h]
	delete(r.timers, h)
	r.mu.Unlock()

	if ok && entry.stop != nil {
		entry.stop()
	}
}

// CancelAll stops every registered timer.
func (r *TimerRegistry) CancelAll() {
	r.mu.Lock()
	entries := r.timers
	r.timers = make(map[TimerHandle]timerEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		if entry.stop != nil {
			entry.stop()
		}
	}
}

// Active reports whether h is registered.
func (r *TimerRegistry) Active(h TimerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[h]
	return ok
}

// Period returns the period of a registered timer.
func (r *TimerRegistry) Period(h TimerHandle) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.timers[h]
	return entry.period, ok
}

// Len returns the number of registered timers.
func (r *TimerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// LoopTicker returns a TickerFunc backed by time.Ticker whose ticks run on
// the loop.
func LoopTicker(loop *Loop) TickerFunc {
	return func(period time.Duration, tick func()) func() {
		t := time.NewTicker(period)
		quit := make(chan struct{})

		go func() {
			defer t.Stop()
			for {
				select {
				case <-t.C:
					loop.Post(tick)
				case <-quit:
					return
				case <-loop.Done():
					return
				}
			}
		}()

		var once sync.Once
		return func() {
			once.Do(func() { close(quit) })
		}
	}
}
