package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// gatewayServer is a scripted gateway endpoint.
func gatewayServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketHandshake(t *testing.T) {
	hello := deflate(t, `{"op":10,"d":{"heartbeat_interval":45000}}`)
	identified := make(chan Identify, 1)
	srv := gatewayServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, hello)

		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read identify: %v", err)
			return
		}
		env, err := DecodeEnvelope(data)
		if err != nil || env.Op != OpIdentify {
			t.Errorf("first payload = %s, want Identify", data)
			return
		}
		var id Identify
		if err := json.Unmarshal(env.Data, &id); err != nil {
			t.Errorf("identify data: %v", err)
		}
		identified <- id

		conn.WriteMessage(websocket.TextMessage, []byte(`{"op":0,"s":1,"t":"READY","d":{}}`))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthenticationFailed, "Authentication failed."))
		conn.ReadMessage()
	})

	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	closed := make(chan *CloseError, 1)
	events := make(chan Event, 4)
	var sup *Supervisor
	loop.Do(func() {
		sup = NewSupervisor(Options{
			Intents:     1,
			Compression: CompressionZlib,
			Dialer:      NewWebSocketDialer(loop),
			Timers:      NewTimerRegistry(LoopTicker(loop)),
			Token:       func() string { return "abc" },
			Sink:        DispatchFunc(func(e Event) { events <- e }),
			OnClose:     func(ce *CloseError) { closed <- ce },
		})
		if !sup.Connect(wsURL(srv)) {
			t.Error("Connect() = false")
		}
	})

	select {
	case id := <-identified:
		if id.Token != "abc" || id.Intents != 1 || !id.Compress {
			t.Errorf("identify = %+v", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received Identify")
	}

	select {
	case e := <-events:
		if e.Name != "READY" || e.Sequence != 1 {
			t.Errorf("event = %+v, want READY #1", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no dispatch event")
	}

	select {
	case ce := <-closed:
		if !errors.Is(ce, ErrAuthenticationFailed) {
			t.Errorf("close = %v, want authentication failure", ce)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("connection never closed")
	}

	var status Status
	loop.Do(func() { status = sup.Status() })
	if status != StatusDisconnected {
		t.Errorf("Status() = %v, want Disconnected", status)
	}
}

func TestWebSocketDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	loop := NewLoop(nil)
	go loop.Run()
	defer loop.Stop()

	closed := make(chan *CloseError, 1)
	loop.Do(func() {
		sup := NewSupervisor(Options{
			Dialer:  NewWebSocketDialer(loop),
			Timers:  NewTimerRegistry(LoopTicker(loop)),
			OnClose: func(ce *CloseError) { closed <- ce },
		})
		sup.Connect(wsURL(srv))
	})

	select {
	case ce := <-closed:
		if ce.Code != CloseAbnormal {
			t.Errorf("close code = %d, want %d", ce.Code, CloseAbnormal)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("failed dial was never reported as a close")
	}
}

func TestWebSocketDialRejectsScheme(t *testing.T) {
	d := NewWebSocketDialer(NewLoop(nil))
	if _, err := d.Dial("https://gateway.test", Handlers{}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Dial() error = %v, want ErrInvalidAddress", err)
	}
}
