// ABOUTME: Tests for the CBOR and JSON codecs
// ABOUTME: Covers round trips, codec lookup and malformed input handling

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/hookwire/pkg/hook"
)

type sample struct {
	Expr  string   `json:"expr" cbor:"1,keyasint"`
	Count uint64   `json:"count" cbor:"2,keyasint"`
	Tags  []string `json:"tags,omitempty" cbor:"3,keyasint,omitempty"`
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []Codec{CBOR, JSON} {
		t.Run(c.ID().String(), func(t *testing.T) {
			t.Parallel()
			in := sample{Expr: "1 + 2", Count: 1 << 40, Tags: []string{"a", "b"}}
			data, err := Encode(c, in)
			require.NoError(t, err)

			out, err := Decode[sample](c, data)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestRoundTripMetadata(t *testing.T) {
	t.Parallel()

	md := hook.Metadata{
		Name:       "eval",
		Version:    "1.2.0",
		ListensFor: []hook.Kind{"eval", "shutdown"},
		Type:       hook.Daemon,
	}
	for _, c := range []Codec{CBOR, JSON} {
		data, err := Encode(c, md)
		require.NoError(t, err)
		got, err := Decode[hook.Metadata](c, data)
		require.NoError(t, err)
		assert.Equal(t, md, got, c.ID().String())
	}
}

func TestCBORDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Encode(CBOR, map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	b, err := Encode(CBOR, map[string]int{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		c    Codec
		data []byte
	}{
		"cbor empty":    {CBOR, nil},
		"cbor garbage":  {CBOR, []byte{0xff, 0xff, 0xff}},
		"cbor trailing": {CBOR, append(mustEncode(t, CBOR, sample{Expr: "x"}), 0x01)},
		"json empty":    {JSON, []byte("  ")},
		"json garbage":  {JSON, []byte("{not json")},
		"json trailing": {JSON, []byte(`{"expr":"x"} {}`)},
		"json closing":  {JSON, []byte(`{"expr":"x"}]`)},
		"json brace":    {JSON, []byte(`{"expr":"x"}}`)},
		"json easyjson": {JSON, []byte(`{"name":`)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var err error
			if name == "json easyjson" {
				_, err = Decode[hook.Metadata](tc.c, tc.data)
			} else {
				_, err = Decode[sample](tc.c, tc.data)
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, hook.ErrCodec)
		})
	}
}

func TestJSONAllowsTrailingWhitespace(t *testing.T) {
	t.Parallel()

	out, err := Decode[sample](JSON, []byte("{\"expr\":\"x\"}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, "x", out.Expr)
}

func TestEncodeUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Encode(JSON, make(chan int))
	require.Error(t, err)
	assert.ErrorIs(t, err, hook.ErrCodec)
}

func TestByIDAndName(t *testing.T) {
	t.Parallel()

	c, err := ByID(IDCBOR)
	require.NoError(t, err)
	assert.Equal(t, IDCBOR, c.ID())

	c, err = ByID(IDJSON)
	require.NoError(t, err)
	assert.Equal(t, IDJSON, c.ID())

	_, err = ByID(9)
	assert.ErrorIs(t, err, hook.ErrCodec)

	c, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, IDCBOR, c.ID())

	c, err = ByName("json")
	require.NoError(t, err)
	assert.Equal(t, IDJSON, c.ID())

	_, err = ByName("xml")
	assert.ErrorIs(t, err, hook.ErrCodec)

	assert.Equal(t, "codec(9)", ID(9).String())
}

func mustEncode(t *testing.T, c Codec, v any) []byte {
	t.Helper()
	data, err := c.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestCBORGenericMapsKeepIntegerKeys(t *testing.T) {
	t.Parallel()

	data, err := Encode(CBOR, hook.Metadata{Name: "n", Version: "1.0.0", Type: hook.Daemon})
	require.NoError(t, err)
	v, err := Decode[any](CBOR, data)
	require.NoError(t, err)
	m, ok := v.(map[any]any)
	require.True(t, ok)
	assert.Equal(t, "n", m[uint64(1)])
}
