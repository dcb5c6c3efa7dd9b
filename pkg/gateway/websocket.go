package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials gateway addresses with gorilla/websocket. Every
// transport callback is delivered through Post.
type WebSocketDialer struct {
	// Post schedules a callback on the connection's execution context.
	Post func(func()) bool

	// Dialer is the underlying websocket dialer.
	Dialer *websocket.Dialer

	// Header is sent with the opening handshake.
	Header http.Header

	// WriteTimeout bounds each write.
	WriteTimeout time.Duration

	// ReadLimit caps the size of an inbound message. Zero means no limit.
	ReadLimit int64
}

// NewWebSocketDialer returns a dialer that posts callbacks to loop.
func NewWebSocketDialer(loop *Loop) *WebSocketDialer {
	return &WebSocketDialer{
		Post: loop.Post,
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		WriteTimeout: 10 * time.Second,
		ReadLimit:    MaxInflatedSize,
	}
}

// Dial validates address and starts connecting in the background. OnOpen or
// OnError followed by OnClose is delivered once the handshake completes.
func (d *WebSocketDialer) Dial(address string, h Handlers) (Transport, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		dialer:   d,
		handlers: h,
		ctx:      ctx,
		cancel:   cancel,
	}
	go t.run(address)
	return t, nil
}

type wsTransport struct {
	dialer   *WebSocketDialer
	handlers Handlers
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (t *wsTransport) post(fn func()) {
	t.dialer.Post(fn)
}

func (t *wsTransport) run(address string) {
	wd := t.dialer.Dialer
	if wd == nil {
		wd = websocket.DefaultDialer
	}

	conn, _, err := wd.DialContext(t.ctx, address, t.dialer.Header)
	if err != nil {
		t.post(func() { t.handlers.OnError(err) })
		t.post(func() { t.handlers.OnClose(CloseAbnormal, err.Error()) })
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	if t.dialer.ReadLimit > 0 {
		conn.SetReadLimit(t.dialer.ReadLimit)
	}
	t.post(t.handlers.OnOpen)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			t.readFailed(err)
			return
		}

		f := Frame{Type: FrameText, Payload: data}
		if messageType == websocket.BinaryMessage {
			f.Type = FrameBinary
		}
		t.post(func() { t.handlers.OnMessage(f) })
	}
}

func (t *wsTransport) readFailed(err error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if t.conn != nil {
		t.conn.Close()
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		t.post(func() { t.handlers.OnClose(ce.Code, ce.Text) })
		return
	}
	if !closed {
		t.post(func() { t.handlers.OnError(err) })
	}
	t.post(func() { t.handlers.OnClose(CloseAbnormal, err.Error()) })
}

// Send writes a text message.
func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		return ErrNotOpen
	}
	if t.dialer.WriteTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.dialer.WriteTimeout))
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and closes the underlying connection.
func (t *wsTransport) Close(code int, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()

	if t.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(time.Second)
	werr := t.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	cerr := t.conn.Close()
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		return werr
	}
	return cerr
}
