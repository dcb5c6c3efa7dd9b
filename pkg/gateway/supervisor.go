package gateway

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// latencyWindow is the number of round-trip samples retained.
const latencyWindow = 2

// Options configures a Supervisor.
type Options struct {
	// Intents is the gateway intents bitfield sent in Identify.
	Intents uint64

	// Properties identifies the client in Identify.
	Properties Properties

	// Compression selects how binary frames are decoded.
	Compression Compression

	// Dialer creates transports. Required.
	Dialer Dialer

	// Timers is the client-wide timer registry. Required.
	Timers *TimerRegistry

	// Token returns the current authorization token.
	Token func() string

	// Debug receives human-readable diagnostics.
	Debug func(string)

	// Sink receives Dispatch events.
	Sink DispatchSink

	// OnClose is called after a connection has been torn down.
	OnClose func(*CloseError)

	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
}

func (o *Options) applyDefaults() {
	if o.Token == nil {
		o.Token = func() string { return "" }
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With("component", "gateway")
	if o.Tracer == nil {
		o.Tracer = defaultTracer()
	}
}

// Supervisor owns at most one Connection and the latency window.
// Like Connection it must only be used from a single execution context.
type Supervisor struct {
	opts Options

	conn      *Connection
	latency   []time.Duration
	lastClose *CloseError
}

// NewSupervisor creates a Supervisor. Dialer and Timers must be set.
func NewSupervisor(opts Options) *Supervisor {
	opts.applyDefaults()
	return &Supervisor{opts: opts}
}

// Connect creates a new Connection and connects it to address.
// It fails if a connection already exists or the address is empty.
func (s *Supervisor) Connect(address string) bool {
	if s.conn != nil {
		s.Debug("There is already an active WebSocket connection.")
		return false
	}
	if address == "" {
		s.Debug("There is no gateway to connect to.")
		return false
	}

	c := newConnection(s)
	s.conn = c
	if !c.Connect(address) {
		if s.conn == c {
			s.conn = nil
		}
		return false
	}
	s.opts.Logger.Info("gateway connecting", "connection_id", c.ID().String(), "address", address)
	return true
}

// RecordLatency records a round trip for a heartbeat sent at sent.
func (s *Supervisor) RecordLatency(sent time.Time) {
	d := s.opts.Now().Sub(sent)
	s.latency = append([]time.Duration{d}, s.latency...)
	if len(s.latency) > latencyWindow {
		s.latency = s.latency[:latencyWindow]
	}
	if s.conn != nil {
		s.conn.heartbeat.acknowledge()
	}
	s.opts.Metrics.HeartbeatAcked(d)
	s.Debug(fmt.Sprintf("Heartbeat acknowledged, latency of %s.", d))
}

// Latency returns a copy of the latency window, newest first.
func (s *Supervisor) Latency() []time.Duration {
	out := make([]time.Duration, len(s.latency))
	copy(out, s.latency)
	return out
}

// Ping returns the newest latency sample, or zero.
func (s *Supervisor) Ping() time.Duration {
	if len(s.latency) == 0 {
		return 0
	}
	return s.latency[0]
}

// Connection returns the current connection, or nil.
func (s *Supervisor) Connection() *Connection {
	return s.conn
}

// Status reports the state of the current connection.
func (s *Supervisor) Status() Status {
	if s.conn != nil {
		return s.conn.Status()
	}
	if s.lastClose != nil {
		return StatusDisconnected
	}
	return StatusIdle
}

// LastClose returns the close that ended the previous connection, or nil.
func (s *Supervisor) LastClose() *CloseError {
	return s.lastClose
}

// Close closes the current connection, if any.
func (s *Supervisor) Close(code int, reason string) {
	if s.conn == nil {
		return
	}
	s.conn.Close(code, reason)
}

// Debug forwards msg to the debug subscriber. A panicking subscriber is
// recovered so diagnostics never break the connection.
func (s *Supervisor) Debug(msg string) {
	s.opts.Logger.Debug(msg)
	if s.opts.Debug == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.opts.Logger.Error("debug subscriber panicked", "panic", r)
		}
	}()
	s.opts.Debug(msg)
}

func (s *Supervisor) connectionClosed(c *Connection, ce *CloseError) {
	if s.conn == c {
		s.conn = nil
	}
	s.lastClose = ce
	if s.opts.OnClose != nil {
		s.opts.OnClose(ce)
	}
}
