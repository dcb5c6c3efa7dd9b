package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// MaxInflatedSize caps the size of an inflated binary frame.
const MaxInflatedSize = 16 << 20

// FrameType is the websocket message type of a raw inbound frame.
type FrameType uint8

const (
	FrameText   FrameType = 0x01 // UTF-8 JSON
	FrameBinary FrameType = 0x02 // Compressed or raw bytes
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameText:
		return "Text"
	case FrameBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Frame is a raw inbound message as delivered by the transport.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// Compression selects how binary frames are interpreted.
type Compression uint8

const (
	// CompressionNone passes binary frames through as raw JSON bytes.
	CompressionNone Compression = iota

	// CompressionZlib inflates every binary frame as a complete zlib stream.
	CompressionZlib
)

// String returns the string representation of the compression mode.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// Decoder turns raw frames into envelopes.
type Decoder struct {
	compression Compression
}

// NewDecoder creates a Decoder for the given compression mode.
func NewDecoder(c Compression) *Decoder {
	return &Decoder{compression: c}
}

// Compression returns the decoder's compression mode.
func (d *Decoder) Compression() Compression {
	return d.compression
}

// Decode decodes a single frame. Errors wrap ErrMalformedFrame or ErrInflate;
// the caller is expected to drop the frame and keep the connection open.
func (d *Decoder) Decode(f Frame) (*Envelope, error) {
	data := f.Payload
	if f.Type == FrameBinary && d.compression == CompressionZlib {
		inflated, err := inflate(data)
		if err != nil {
			return nil, err
		}
		data = inflated
	}
	return DecodeEnvelope(data)
}

// DecodeEnvelope parses a JSON envelope. The "op" field is required.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var wire struct {
		Op       *Opcode         `json:"op"`
		Data     json.RawMessage `json:"d"`
		Sequence *int64          `json:"s"`
		Event    *string         `json:"t"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if wire.Op == nil {
		return nil, fmt.Errorf("%w: missing op", ErrMalformedFrame)
	}

	env := &Envelope{
		Op:       *wire.Op,
		Data:     wire.Data,
		Sequence: wire.Sequence,
	}
	if wire.Event != nil {
		env.EventName = *wire.Event
	}
	return env, nil
}

// inflate decompresses a complete zlib stream.
func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInflate, err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxInflatedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInflate, err)
	}
	if len(out) > MaxInflatedSize {
		return nil, fmt.Errorf("%w: inflated payload exceeds %d bytes", ErrMalformedFrame, MaxInflatedSize)
	}
	return out, nil
}
