// ABOUTME: CBOR codec built on fxamacker/cbor with deterministic encoding
// ABOUTME: Rejects trailing bytes and duplicate map keys when decoding

package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is the binary codec.
var CBOR Codec = newCBORCodec()

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() *cborCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode options: %v", err))
	}
	dec, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 64,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decode options: %v", err))
	}
	return &cborCodec{enc: enc, dec: dec}
}

func (c *cborCodec) ID() ID { return IDCBOR }

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *cborCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty input")
	}
	return c.dec.Unmarshal(data, v)
}
