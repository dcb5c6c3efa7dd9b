package gateway

import (
	"fmt"
	"math"
	"time"
)

// DisableInterval is the interval directive that cancels heartbeating.
const DisableInterval = -1

// Heartbeat owns a connection's recurring heartbeat timer and its
// acknowledgment state. At most one timer is active at any time.
type Heartbeat struct {
	timers   *TimerRegistry
	send     func(Payload) error
	sequence func() int64
	now      func() time.Time
	debug    func(string)
	metrics  *Metrics

	handle     TimerHandle
	interval   time.Duration
	lastSent   time.Time
	ackPending bool
}

func newHeartbeat(c *Connection) *Heartbeat {
	return &Heartbeat{
		timers:   c.timers,
		send:     c.Send,
		sequence: c.Sequence,
		now:      c.now,
		debug:    c.debug,
		metrics:  c.metrics,
	}
}

// SetInterval applies a heartbeat interval directive in milliseconds.
// DisableInterval cancels the current timer; any other positive value
// replaces it. Non-finite or non-positive values are ignored.
func (h *Heartbeat) SetInterval(ms float64) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		h.debug("Ignoring non-finite heartbeat interval.")
		return
	}
	if ms == DisableInterval {
		h.Stop()
		h.debug("Heartbeat disabled.")
		return
	}
	if ms <= 0 {
		h.debug(fmt.Sprintf("Ignoring invalid heartbeat interval: %v", ms))
		return
	}

	h.Stop()
	period := time.Duration(ms * float64(time.Millisecond))
	h.handle = h.timers.Add(h.Beat, period)
	h.interval = period
	h.debug(fmt.Sprintf("Heartbeat interval set to %s.", period))
}

// Beat sends a heartbeat immediately. The send time and pending ack are
// recorded only if the send succeeds.
func (h *Heartbeat) Beat() {
	if h.ackPending {
		h.debug("Previous heartbeat was not acknowledged.")
		h.metrics.HeartbeatMissed()
	}

	sentAt := h.now()
	if err := h.send(NewHeartbeat(h.sequence())); err != nil {
		h.debug(fmt.Sprintf("Heartbeat send failed: %v", err))
		return
	}
	h.lastSent = sentAt
	h.ackPending = true
	h.metrics.HeartbeatSent()
}

// Stop cancels the timer, if any.
func (h *Heartbeat) Stop() {
	if h.handle == 0 {
		return
	}
	h.timers.Remove(h.handle)
	h.handle = 0
	h.interval = 0
}

// acknowledge clears the pending flag.
func (h *Heartbeat) acknowledge() {
	h.ackPending = false
}

// Active reports whether a heartbeat timer is installed.
func (h *Heartbeat) Active() bool {
	return h.handle != 0 && h.timers.Active(h.handle)
}

// Handle returns the current timer handle, or zero.
func (h *Heartbeat) Handle() TimerHandle {
	return h.handle
}

// Interval returns the installed period, or zero.
func (h *Heartbeat) Interval() time.Duration {
	return h.interval
}

// LastSent returns when the last heartbeat was sent.
func (h *Heartbeat) LastSent() time.Time {
	return h.lastSent
}

// AckPending reports whether the last heartbeat is still unacknowledged.
func (h *Heartbeat) AckPending() bool {
	return h.ackPending
}
