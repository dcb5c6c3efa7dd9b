package hallocord

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/hallocord/internal/errors"
	"github.com/vango-dev/hallocord/pkg/gateway"
)

// Client owns one gateway connection at a time, the timer registry and
// the event loop that serializes all protocol work.
//
// Subscribers registered with OnDebug, OnDispatch and OnClose run on the
// loop. They may call Send, Authorize, AddTimer and RemoveTimer, but must
// not call Connect, Login, Latency, Ping, Status or Close, which wait for
// the loop.
type Client struct {
	opts   options
	logger *slog.Logger

	loop   *gateway.Loop
	timers *gateway.TimerRegistry
	sup    *gateway.Supervisor

	mu         sync.RWMutex
	token      string
	session    *session
	onDebug    []func(string)
	onDispatch []func(gateway.Event)
	onClose    []func(*gateway.CloseError)

	closeOnce sync.Once
	closed    chan struct{}
}

// session tracks one connection attempt for Wait.
type session struct {
	done chan struct{}
	err  *gateway.CloseError
}

// New creates a Client and starts its event loop.
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		opts:   o,
		logger: o.logger.With("component", "client"),
		closed: make(chan struct{}),
	}
	c.loop = gateway.NewLoop(o.logger)
	c.timers = gateway.NewTimerRegistry(o.ticker(c.loop))
	c.sup = gateway.NewSupervisor(gateway.Options{
		Intents:     uint64(o.intents),
		Properties:  o.properties,
		Compression: o.compression,
		Dialer:      o.dialer(c.loop),
		Timers:      c.timers,
		Token:       c.currentToken,
		Debug:       c.emitDebug,
		Sink:        gateway.DispatchFunc(c.emitDispatch),
		OnClose:     c.handleClose,
		Now:         o.now,
		Logger:      o.logger,
		Metrics:     o.metrics,
		Tracer:      o.tracer,
	})

	go c.loop.Run()
	return c
}

// Authorize sets the credential used by the next Identify.
func (c *Client) Authorize(token string) error {
	if token == "" {
		return errors.New("H001")
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Connect opens a connection to address. It returns false if a connection
// already exists, the address is empty or cannot be dialed, or the client
// is closed.
func (c *Client) Connect(address string) bool {
	var ok bool
	c.loop.Do(func() {
		ok = c.sup.Connect(address)
		if ok {
			c.mu.Lock()
			c.session = &session{done: make(chan struct{})}
			c.mu.Unlock()
		}
	})
	return ok
}

// Login authorizes with token and connects to the configured gateway.
// It returns once the connection attempt has started; use Wait to block
// until it ends.
func (c *Client) Login(token string) error {
	select {
	case <-c.closed:
		return errors.New("H004")
	default:
	}
	if err := c.Authorize(token); err != nil {
		return err
	}

	address, err := gateway.BuildAddress(c.opts.gatewayURL, gateway.AddressOptions{
		Version: c.opts.version,
	})
	if err != nil {
		return errors.New("H002").Wrap(err)
	}
	if !c.Connect(address) {
		if st := c.Status(); st == gateway.StatusConnecting || st == gateway.StatusOpen {
			return errors.New("H003")
		}
		return errors.New("H002").WithDetail("Could not start a connection to " + address + ".")
	}
	c.logger.Info("logging in", "address", address, "intents", c.opts.intents.String())
	return nil
}

// Send queues p for the current connection. Delivery is asynchronous:
// a missing or closed connection is reported on the debug channel.
func (c *Client) Send(p gateway.Payload) error {
	if !c.loop.Post(func() {
		conn := c.sup.Connection()
		if conn == nil {
			c.sup.Debug("There is no active WebSocket connection.")
			return
		}
		conn.Send(p)
	}) {
		return gateway.ErrLoopStopped
	}
	return nil
}

// AddTimer runs action on the loop every period until RemoveTimer or
// Close. A non-positive period returns the zero handle.
func (c *Client) AddTimer(action func(), period time.Duration) gateway.TimerHandle {
	return c.timers.Add(action, period)
}

// RemoveTimer stops a timer. Unknown handles are ignored.
func (c *Client) RemoveTimer(h gateway.TimerHandle) {
	c.timers.Remove(h)
}

// Latency returns the two most recent heartbeat round trips, newest first.
func (c *Client) Latency() []time.Duration {
	var out []time.Duration
	c.loop.Do(func() { out = c.sup.Latency() })
	return out
}

// Ping returns the most recent heartbeat round trip, or zero.
func (c *Client) Ping() time.Duration {
	var d time.Duration
	c.loop.Do(func() { d = c.sup.Ping() })
	return d
}

// Status returns the state of the current connection.
func (c *Client) Status() gateway.Status {
	status := gateway.StatusDisconnected
	c.loop.Do(func() { status = c.sup.Status() })
	return status
}

// Wait blocks until the current connection closes or ctx is done.
// A normal close returns nil. An authentication failure returns an error
// matching gateway.ErrAuthenticationFailed.
func (c *Client) Wait(ctx context.Context) error {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()
	if s == nil {
		return gateway.ErrNotOpen
	}

	select {
	case <-s.done:
		return closeResult(s.err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closeResult(ce *gateway.CloseError) error {
	switch {
	case ce == nil:
		return nil
	case ce.Code == gateway.CloseAuthenticationFailed:
		return errors.New("H010").Wrap(ce)
	case ce.Fatal():
		return errors.New("H011").Wrap(ce)
	case ce.Code == gateway.CloseNormal:
		return nil
	default:
		return ce
	}
}

// Close closes the connection with code 1000, cancels every timer and
// stops the loop. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.loop.Do(func() {
			c.sup.Close(gateway.CloseNormal, "client closed")
		})
		c.timers.CancelAll()
		c.loop.Stop()
		close(c.closed)
		c.logger.Debug("client closed")
	})
	return nil
}

// OnDebug subscribes to diagnostics.
func (c *Client) OnDebug(fn func(msg string)) {
	c.mu.Lock()
	c.onDebug = append(c.onDebug, fn)
	c.mu.Unlock()
}

// OnDispatch subscribes to Dispatch events.
func (c *Client) OnDispatch(fn func(e gateway.Event)) {
	c.mu.Lock()
	c.onDispatch = append(c.onDispatch, fn)
	c.mu.Unlock()
}

// OnClose subscribes to connection closes.
func (c *Client) OnClose(fn func(ce *gateway.CloseError)) {
	c.mu.Lock()
	c.onClose = append(c.onClose, fn)
	c.mu.Unlock()
}

func (c *Client) emitDebug(msg string) {
	c.mu.RLock()
	subs := c.onDebug
	c.mu.RUnlock()
	for _, fn := range subs {
		fn(msg)
	}
}

func (c *Client) emitDispatch(e gateway.Event) {
	c.mu.RLock()
	subs := c.onDispatch
	c.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}

func (c *Client) handleClose(ce *gateway.CloseError) {
	c.mu.Lock()
	s := c.session
	subs := c.onClose
	c.mu.Unlock()

	if s != nil {
		select {
		case <-s.done:
		default:
			s.err = ce
			close(s.done)
		}
	}
	for _, fn := range subs {
		fn(ce)
	}
}
