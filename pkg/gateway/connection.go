package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Connection is a single gateway connection. It owns its transport and its
// heartbeat state and is not safe for concurrent use: every method and
// transport callback must run on the same execution context.
type Connection struct {
	id      uuid.UUID
	owner   *Supervisor
	address string
	status  Status

	token       string
	intents     uint64
	properties  Properties
	compression Compression

	dialer    Dialer
	transport Transport
	decoder   *Decoder
	heartbeat *Heartbeat
	sequence  int64

	timers  *TimerRegistry
	sink    DispatchSink
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

func newConnection(s *Supervisor) *Connection {
	id := uuid.New()
	c := &Connection{
		id:          id,
		owner:       s,
		status:      StatusIdle,
		token:       s.opts.Token(),
		intents:     s.opts.Intents,
		properties:  s.opts.Properties,
		compression: s.opts.Compression,
		dialer:      s.opts.Dialer,
		decoder:     NewDecoder(s.opts.Compression),
		sequence:    NoSequence,
		timers:      s.opts.Timers,
		sink:        s.opts.Sink,
		now:         s.opts.Now,
		logger:      s.opts.Logger.With("connection_id", id.String()),
		metrics:     s.opts.Metrics,
		tracer:      s.opts.Tracer,
	}
	c.heartbeat = newHeartbeat(c)
	return c
}

// ID returns the connection's correlation id.
func (c *Connection) ID() uuid.UUID { return c.id }

// Address returns the address passed to Connect.
func (c *Connection) Address() string { return c.address }

// Status returns the lifecycle state.
func (c *Connection) Status() Status { return c.status }

// Sequence returns the last Dispatch sequence, or NoSequence.
func (c *Connection) Sequence() int64 { return c.sequence }

// Heartbeat returns the connection's heartbeat scheduler.
func (c *Connection) Heartbeat() *Heartbeat { return c.heartbeat }

// Connect instantiates the transport. It fails without changing state if a
// transport is already held, the connection is not idle, or address is empty.
func (c *Connection) Connect(address string) bool {
	if c.transport != nil || c.status != StatusIdle {
		c.debug("There is already an active WebSocket connection.")
		return false
	}
	if address == "" {
		c.debug("There is no gateway to connect to.")
		return false
	}

	c.debug(fmt.Sprintf("Connecting to %s...", address))
	t, err := c.dialer.Dial(address, Handlers{
		OnOpen:    c.onOpen,
		OnMessage: c.onMessage,
		OnError:   c.onError,
		OnClose:   c.onClose,
	})
	if err != nil {
		c.debug(fmt.Sprintf("WebSocket dial failed: %v", err))
		return false
	}

	c.address = address
	c.transport = t
	c.setStatus(StatusConnecting)
	return true
}

// Send serializes p and writes it to the transport.
func (c *Connection) Send(p Payload) error {
	if c.transport == nil || c.status != StatusOpen {
		c.debug("There is no active WebSocket connection.")
		return ErrNotOpen
	}

	data, err := json.Marshal(p)
	if err != nil {
		c.debug(fmt.Sprintf("Could not encode %s payload: %v", p.Op, err))
		return fmt.Errorf("gateway: encode %s payload: %w", p.Op, err)
	}

	c.debug(fmt.Sprintf("Sending a %s packet (%d bytes).", p.Op, len(data)))
	if err := c.transport.Send(data); err != nil {
		c.metrics.SendError()
		c.debug(fmt.Sprintf("WebSocket send failed: %v", err))
		return err
	}
	return nil
}

// Close closes the transport and tears the connection down.
func (c *Connection) Close(code int, reason string) {
	if c.status == StatusDisconnected {
		return
	}
	if c.transport != nil {
		if err := c.transport.Close(code, reason); err != nil {
			c.debug(fmt.Sprintf("WebSocket close failed: %v", err))
		}
	}
	c.teardown(&CloseError{Code: code, Reason: reason})
}

func (c *Connection) onOpen() {
	if c.status != StatusConnecting {
		return
	}
	c.setStatus(StatusOpen)
	c.debug("WebSocket connection opened.")
	c.identify()
}

func (c *Connection) onMessage(f Frame) {
	if c.status == StatusDisconnected {
		return
	}
	c.metrics.FrameReceived(f.Type)

	env, err := c.decoder.Decode(f)
	if err != nil {
		c.metrics.DecodeError()
		c.logger.Warn("dropping frame", "type", f.Type, "error", err)
		c.debug(fmt.Sprintf("Dropping malformed %s frame: %v", f.Type, err))
		return
	}
	c.dispatch(env)
}

func (c *Connection) onError(err error) {
	c.debug(fmt.Sprintf("WebSocket connection errored: %v", err))
}

func (c *Connection) onClose(code int, reason string) {
	if c.status == StatusDisconnected {
		return
	}
	c.teardown(&CloseError{Code: code, Reason: reason})
}

// teardown moves to Disconnected, cancels the heartbeat timer and reports
// the close to the owner.
func (c *Connection) teardown(ce *CloseError) {
	c.setStatus(StatusDisconnected)
	c.heartbeat.Stop()
	c.transport = nil
	c.metrics.Closed(ce.Code)

	c.debug(fmt.Sprintf("WebSocket connection closed: %s (%d)", ce.Reason, ce.Code))
	if ce.Fatal() {
		c.logger.Error("gateway closed with fatal code, not retrying",
			"code", ce.Code,
			"name", CloseCodeName(ce.Code),
			"reason", ce.Reason)
		c.debug(fmt.Sprintf("Fatal close %d (%s): the connection cannot be retried.", ce.Code, CloseCodeName(ce.Code)))
	} else {
		c.logger.Info("gateway closed", "code", ce.Code, "reason", ce.Reason)
	}

	c.owner.connectionClosed(c, ce)
}

// dispatch routes an envelope by opcode.
func (c *Connection) dispatch(env *Envelope) {
	c.debug(fmt.Sprintf("Received a %s packet.", env.Op))

	switch env.Op {
	case OpHello:
		c.handleHello(env.Data)

	case OpHeartbeat:
		// Server-requested heartbeat, sent outside the timer.
		c.heartbeat.Beat()

	case OpHeartbeatAck:
		c.handleHeartbeatAck()

	case OpDispatch:
		c.handleDispatch(env)

	case OpReconnect, OpInvalidSession:
		c.debug(fmt.Sprintf("Server sent %s; session resumption is not supported.", env.Op))

	default:
		c.debug(fmt.Sprintf("Received an unknown packet: %d", int(env.Op)))
	}
}

func (c *Connection) handleHello(data json.RawMessage) {
	var hello Hello
	if err := json.Unmarshal(data, &hello); err != nil || hello.HeartbeatInterval == nil {
		c.debug("Hello carried no numeric heartbeat_interval; ignoring.")
		return
	}
	c.heartbeat.SetInterval(*hello.HeartbeatInterval)
}

func (c *Connection) handleHeartbeatAck() {
	sent := c.heartbeat.LastSent()
	if sent.IsZero() {
		c.debug("Received a heartbeat ack before any heartbeat was sent.")
		return
	}
	if !c.heartbeat.AckPending() {
		c.debug("Received a duplicate heartbeat ack; ignoring.")
		return
	}
	c.owner.RecordLatency(sent)
}

func (c *Connection) handleDispatch(env *Envelope) {
	if env.Sequence != nil {
		c.sequence = *env.Sequence
	}
	c.debug(fmt.Sprintf("Received a dispatch packet: %s", env.EventName))
	c.metrics.Dispatched(env.EventName)

	if c.sink == nil {
		return
	}
	span := c.startSpan("gateway.dispatch",
		attribute.String("gateway.event", env.EventName),
		attribute.Int64("gateway.sequence", c.sequence))
	c.sink.Dispatch(Event{Name: env.EventName, Sequence: c.sequence, Data: env.Data})
	endSpan(span, nil)
}

// identify sends the Identify handshake. It is a no-op before onOpen.
func (c *Connection) identify() {
	if c.transport == nil || c.status != StatusOpen {
		c.debug("Cannot identify without an open WebSocket connection.")
		return
	}

	span := c.startSpan("gateway.identify",
		attribute.Int64("gateway.intents", int64(c.intents)),
		attribute.Bool("gateway.compress", c.compression == CompressionZlib))
	err := c.Send(NewIdentify(Identify{
		Token:      c.token,
		Intents:    c.intents,
		Properties: c.properties,
		Compress:   c.compression == CompressionZlib,
	}))
	endSpan(span, err)
}

func (c *Connection) setStatus(s Status) {
	c.status = s
	c.metrics.SetStatus(s)
}

func (c *Connection) debug(msg string) {
	c.owner.Debug(msg)
}
