package gateway

import "encoding/json"

// Transport is a duplex, message-oriented connection owned by a single
// Connection.
type Transport interface {
	// Send writes one text message.
	Send(data []byte) error

	// Close starts the closing handshake and releases the connection.
	Close(code int, reason string) error
}

// Handlers are the transport callbacks registered by a Connection.
// Transports must deliver them on the Connection's execution context and
// must not call them from inside Dial.
type Handlers struct {
	OnOpen    func()
	OnMessage func(Frame)
	OnError   func(error)
	OnClose   func(code int, reason string)
}

// Dialer instantiates transports.
type Dialer interface {
	Dial(address string, h Handlers) (Transport, error)
}

// Event is a Dispatch envelope handed to the application.
type Event struct {
	Name     string
	Sequence int64
	Data     json.RawMessage
}

// DispatchSink receives Dispatch events.
type DispatchSink interface {
	Dispatch(e Event)
}

// DispatchFunc adapts a function to DispatchSink.
type DispatchFunc func(e Event)

// Dispatch calls f(e).
func (f DispatchFunc) Dispatch(e Event) {
	f(e)
}
