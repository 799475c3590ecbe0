// ABOUTME: Length-prefixed frame format shared by pipes and the library boundary
// ABOUTME: Each frame carries a type, codec id, request id, hook kind and payload

// Package wire defines the records exchanged between host and scripts.
//
// Layout, big endian:
//
//	uint32  length of everything after this field
//	uint8   frame type
//	uint8   codec id of the payload
//	[16]    request id (responses echo the request's id)
//	uint16  kind length, followed by the kind bytes
//	...     payload
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
)

// Protocol is the framing revision sent in Hello.
const Protocol = 1

// MaxFrameSize bounds a single frame body.
const MaxFrameSize = 64 << 20

const (
	lengthSize = 4
	headerSize = 1 + 1 + 16 + 2
)

var (
	// ErrTruncated means the stream ended in the middle of a frame.
	ErrTruncated = errors.New("truncated frame")
	// ErrFrameTooLarge means a frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrUnknownType means the frame type byte names no known frame.
	ErrUnknownType = errors.New("unknown frame type")
)

// Type is the frame discriminator.
type Type uint8

const (
	// TypeHello asks a script for its metadata.
	TypeHello Type = 1
	// TypeMetadata answers Hello.
	TypeMetadata Type = 2
	// TypeHook delivers one hook input.
	TypeHook Type = 3
	// TypeOutput carries a handler's output.
	TypeOutput Type = 4
	// TypeError carries a Failure describing why no output was produced.
	TypeError Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeHello:
		return "hello"
	case TypeMetadata:
		return "metadata"
	case TypeHook:
		return "hook"
	case TypeOutput:
		return "output"
	case TypeError:
		return "error"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Frame is one record on the wire.
type Frame struct {
	Type    Type
	Codec   codec.ID
	ID      uuid.UUID
	Kind    hook.Kind
	Payload []byte
}

// Hello is the payload of a TypeHello frame.
type Hello struct {
	Protocol int `json:"protocol" cbor:"1,keyasint"`
}

// Failure is the payload of a TypeError frame.
type Failure struct {
	Message string `json:"message" cbor:"1,keyasint"`
}

// NewRequest builds a request frame with a fresh id.
func NewRequest(t Type, c codec.ID, kind hook.Kind, payload []byte) Frame {
	return Frame{Type: t, Codec: c, ID: uuid.New(), Kind: kind, Payload: payload}
}

// Reply builds a response to f, echoing its id, codec and kind.
func (f Frame) Reply(t Type, payload []byte) Frame {
	return Frame{Type: t, Codec: f.Codec, ID: f.ID, Kind: f.Kind, Payload: payload}
}

// Marshal encodes f as a complete length-prefixed record.
func Marshal(f Frame) ([]byte, error) {
	if len(f.Kind) > 0xffff {
		return nil, fmt.Errorf("kind %q longer than %d bytes", f.Kind[:32], 0xffff)
	}
	body := headerSize + len(f.Kind) + len(f.Payload)
	if body > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, body)
	}
	buf := make([]byte, lengthSize+body)
	binary.BigEndian.PutUint32(buf, uint32(body))
	b := buf[lengthSize:]
	b[0] = byte(f.Type)
	b[1] = byte(f.Codec)
	copy(b[2:18], f.ID[:])
	binary.BigEndian.PutUint16(b[18:20], uint16(len(f.Kind)))
	n := copy(b[20:], f.Kind)
	copy(b[20+n:], f.Payload)
	return buf, nil
}

// Unmarshal decodes exactly one record. Trailing bytes are an error.
func Unmarshal(data []byte) (Frame, error) {
	if len(data) < lengthSize {
		return Frame{}, ErrTruncated
	}
	body := binary.BigEndian.Uint32(data)
	if body > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, body)
	}
	rest := data[lengthSize:]
	if uint32(len(rest)) < body {
		return Frame{}, ErrTruncated
	}
	if uint32(len(rest)) > body {
		return Frame{}, fmt.Errorf("%d trailing bytes after frame", uint32(len(rest))-body)
	}
	return parseBody(rest)
}

func parseBody(b []byte) (Frame, error) {
	if len(b) > 0 && (Type(b[0]) < TypeHello || Type(b[0]) > TypeError) {
		return Frame{}, fmt.Errorf("%w %d", ErrUnknownType, b[0])
	}
	if len(b) < headerSize {
		return Frame{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, headerSize, len(b))
	}
	var f Frame
	f.Type = Type(b[0])
	f.Codec = codec.ID(b[1])
	copy(f.ID[:], b[2:18])
	kindLen := int(binary.BigEndian.Uint16(b[18:20]))
	if len(b) < headerSize+kindLen {
		return Frame{}, fmt.Errorf("%w: kind needs %d bytes", ErrTruncated, kindLen)
	}
	f.Kind = hook.Kind(b[20 : 20+kindLen])
	f.Payload = b[20+kindLen:]
	return f, nil
}

// EncodeFrame builds a frame whose payload is v encoded with c.
func EncodeFrame[T any](t Type, c codec.Codec, id uuid.UUID, kind hook.Kind, v T) (Frame, error) {
	payload, err := codec.Encode(c, v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: t, Codec: c.ID(), ID: id, Kind: kind, Payload: payload}, nil
}

// DecodePayload decodes the frame payload with the codec named in the frame.
func DecodePayload[T any](f Frame) (T, error) {
	c, err := codec.ByID(f.Codec)
	if err != nil {
		var zero T
		return zero, err
	}
	return codec.Decode[T](c, f.Payload)
}

// Failed turns an error frame into an error wrapping hook.ErrScript.
func Failed(f Frame) error {
	fail, err := DecodePayload[Failure](f)
	if err != nil {
		return fmt.Errorf("%w: undecodable error record: %w", hook.ErrScript, err)
	}
	return fmt.Errorf("%w: %s", hook.ErrScript, fail.Message)
}
