// ABOUTME: Transport codec: encodes hook and output values to bytes and back
// ABOUTME: CBOR is the default binary format; JSON is the textual alternative

// Package codec turns hook inputs and outputs into bytes. The same codec is
// used for pipes and for the dynamic-library boundary, and every frame names
// the codec of its payload so both sides always agree.
package codec

import (
	"fmt"

	"github.com/mauromedda/hookwire/pkg/hook"
)

// ID identifies a codec on the wire.
type ID uint8

const (
	// IDCBOR identifies the CBOR codec.
	IDCBOR ID = 1
	// IDJSON identifies the JSON codec.
	IDJSON ID = 2
)

// String returns the codec name.
func (id ID) String() string {
	switch id {
	case IDCBOR:
		return "cbor"
	case IDJSON:
		return "json"
	default:
		return fmt.Sprintf("codec(%d)", uint8(id))
	}
}

// Codec encodes and decodes payloads.
type Codec interface {
	ID() ID
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Default is the codec hosts use unless configured otherwise.
var Default Codec = CBOR

// ByID returns the codec registered under id.
func ByID(id ID) (Codec, error) {
	switch id {
	case IDCBOR:
		return CBOR, nil
	case IDJSON:
		return JSON, nil
	}
	return nil, fmt.Errorf("%w: unknown codec id %d", hook.ErrCodec, uint8(id))
}

// ByName resolves a codec from its configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "cbor":
		return CBOR, nil
	case "json":
		return JSON, nil
	}
	return nil, fmt.Errorf("%w: unknown codec %q (want cbor or json)", hook.ErrCodec, name)
}

// Encode marshals v with c. Failures wrap hook.ErrCodec.
func Encode[T any](c Codec, v T) ([]byte, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %T with %s: %w", hook.ErrCodec, v, c.ID(), err)
	}
	return data, nil
}

// Decode unmarshals data into a new T. Malformed input returns an error
// wrapping hook.ErrCodec and never a zero value posing as a result.
func Decode[T any](c Codec, data []byte) (T, error) {
	var v T
	if err := safeUnmarshal(c, data, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: decode %T with %s: %w", hook.ErrCodec, v, c.ID(), err)
	}
	return v, nil
}

// safeUnmarshal turns decoder panics on hostile input into errors.
func safeUnmarshal(c Codec, data []byte, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return c.Unmarshal(data, v)
}
