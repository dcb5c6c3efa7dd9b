package gateway

import "encoding/json"

// NoSequence is the cached sequence before any Dispatch has been received.
const NoSequence int64 = -1

// Envelope is a decoded inbound gateway message.
//
// Wire format:
//
//	{ "op": integer, "d": any, "s": integer|null, "t": string|null }
type Envelope struct {
	Op        Opcode          `json:"op"`
	Data      json.RawMessage `json:"d"`
	Sequence  *int64          `json:"s"`
	EventName string          `json:"t"`
}

// Payload is an outbound gateway message. Data is serialized as "d".
type Payload struct {
	Op   Opcode `json:"op"`
	Data any    `json:"d"`
}

// Properties describes the connecting platform in Identify.
type Properties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Identify is the data of an OpIdentify payload.
type Identify struct {
	Token      string     `json:"token"`
	Intents    uint64     `json:"intents"`
	Properties Properties `json:"properties"`
	Compress   bool       `json:"compress,omitempty"`
}

// Hello is the data of an OpHello envelope.
// HeartbeatInterval is nil when the field is missing.
type Hello struct {
	HeartbeatInterval *float64 `json:"heartbeat_interval"`
}

// NewHeartbeat builds a heartbeat payload carrying the last seen sequence.
// The sequence is sent as null when no Dispatch has been received.
func NewHeartbeat(seq int64) Payload {
	if seq == NoSequence {
		return Payload{Op: OpHeartbeat, Data: nil}
	}
	return Payload{Op: OpHeartbeat, Data: seq}
}

// NewIdentify builds an identify payload.
func NewIdentify(id Identify) Payload {
	return Payload{Op: OpIdentify, Data: id}
}
