// ABOUTME: JSON codec with an easyjson fast path for generated types
// ABOUTME: Falls back to encoding/json for types without generated marshalers

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mailru/easyjson"
)

// JSON is the textual codec.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) ID() ID { return IDJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(easyjson.Marshaler); ok {
		return easyjson.Marshal(m)
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("empty input")
	}
	if u, ok := v.(easyjson.Unmarshaler); ok {
		return easyjson.Unmarshal(data, u)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}
