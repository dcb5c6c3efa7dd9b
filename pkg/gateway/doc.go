// Package gateway implements the client side of a Discord-style real-time
// gateway: the opening handshake, Identify, heartbeat scheduling and
// acknowledgment tracking, and payload decoding for text, JSON and
// zlib-compressed binary frames.
//
// # Execution model
//
// Protocol state lives in three types that are not safe for concurrent use:
//
//   - Supervisor owns at most one Connection and the latency window.
//   - Connection owns a Transport, a Decoder and a Heartbeat.
//   - Heartbeat owns one recurring timer in the shared TimerRegistry.
//
// All of them must be driven from a single execution context. Loop provides
// one: a FIFO of tasks drained by a single goroutine. WebSocketDialer and
// LoopTicker deliver transport callbacks and timer ticks by posting to it.
//
// Tests drive the same types synchronously with a fake Dialer and a manual
// TickerFunc.
//
// # Wire format
//
// Every payload is a JSON envelope:
//
//	{"op": 10, "d": {"heartbeat_interval": 41250}, "s": null, "t": null}
//
// Binary frames are inflated as a complete zlib stream when the decoder is
// in CompressionZlib mode and parsed as raw JSON otherwise.
package gateway
