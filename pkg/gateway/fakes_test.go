package gateway

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

// manualTicker records started timers and fires them on demand.
type manualTicker struct {
	next    int
	tickers map[int]*manualTimer
}

type manualTimer struct {
	period  time.Duration
	tick    func()
	stopped bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{tickers: make(map[int]*manualTimer)}
}

func (m *manualTicker) start(period time.Duration, tick func()) func() {
	m.next++
	mt := &manualTimer{period: period, tick: tick}
	m.tickers[m.next] = mt
	return func() { mt.stopped = true }
}

// running returns the timers that have not been stopped, oldest first.
func (m *manualTicker) running() []*manualTimer {
	keys := make([]int, 0, len(m.tickers))
	for k := range m.tickers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var out []*manualTimer
	for _, k := range keys {
		if !m.tickers[k].stopped {
			out = append(out, m.tickers[k])
		}
	}
	return out
}

// fireAll fires every running timer once.
func (m *manualTicker) fireAll() {
	for _, mt := range m.running() {
		mt.tick()
	}
}

// fakeClock is a settable clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeTransport records writes and closes.
type fakeTransport struct {
	handlers Handlers
	sent     [][]byte
	sendErr  error
	closed   bool
	code     int
	reason   string
}

func (t *fakeTransport) Send(data []byte) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, data)
	return nil
}

func (t *fakeTransport) Close(code int, reason string) error {
	t.closed = true
	t.code = code
	t.reason = reason
	return nil
}

// payloads decodes every sent message.
func (t *fakeTransport) payloads(tb testing.TB) []Envelope {
	tb.Helper()
	out := make([]Envelope, 0, len(t.sent))
	for _, raw := range t.sent {
		env, err := DecodeEnvelope(raw)
		if err != nil {
			tb.Fatalf("sent payload %q did not decode: %v", raw, err)
		}
		out = append(out, *env)
	}
	return out
}

func (t *fakeTransport) open() { t.handlers.OnOpen() }
func (t *fakeTransport) message(s string) {
	t.handlers.OnMessage(Frame{Type: FrameText, Payload: []byte(s)})
}
func (t *fakeTransport) remoteClose(code int, reason string) {
	t.handlers.OnClose(code, reason)
}

// fakeDialer hands out fakeTransports synchronously.
type fakeDialer struct {
	transports []*fakeTransport
	err        error
}

func (d *fakeDialer) Dial(address string, h Handlers) (Transport, error) {
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{handlers: h}
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) last(tb testing.TB) *fakeTransport {
	tb.Helper()
	if len(d.transports) == 0 {
		tb.Fatal("no transport was dialed")
	}
	return d.transports[len(d.transports)-1]
}

var errDial = errors.New("dial refused")

// harness wires a Supervisor to fakes.
type harness struct {
	sup    *Supervisor
	dialer *fakeDialer
	ticker *manualTicker
	timers *TimerRegistry
	clock  *fakeClock
	debug  []string
	events []Event
	closes []*CloseError
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		dialer: &fakeDialer{},
		ticker: newManualTicker(),
		clock:  newFakeClock(),
	}
	h.timers = NewTimerRegistry(h.ticker.start)

	opts := Options{
		Intents:    513,
		Properties: Properties{OS: "linux", Browser: "hallocord", Device: "hallocord"},
		Dialer:     h.dialer,
		Timers:     h.timers,
		Token:      func() string { return "secret-token" },
		Debug:      func(msg string) { h.debug = append(h.debug, msg) },
		Sink:       DispatchFunc(func(e Event) { h.events = append(h.events, e) }),
		OnClose:    func(ce *CloseError) { h.closes = append(h.closes, ce) },
		Now:        h.clock.Now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	h.sup = NewSupervisor(opts)
	return h
}

// open connects and completes the handshake.
func (h *harness) open(t *testing.T) *fakeTransport {
	t.Helper()
	if !h.sup.Connect("wss://gateway.test/?v=10&encoding=json") {
		t.Fatal("Connect() = false, want true")
	}
	tr := h.dialer.last(t)
	tr.open()
	return tr
}

func (h *harness) sawDebug(substr string) bool {
	for _, msg := range h.debug {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func mustJSON(tb testing.TB, v any) string {
	tb.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("json.Marshal: %v", err)
	}
	return string(b)
}
