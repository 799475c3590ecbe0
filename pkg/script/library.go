// ABOUTME: Record builders for scripts compiled as dynamic libraries
// ABOUTME: The exported C entry points return these bytes to the host

package script

import (
	"context"

	"github.com/google/uuid"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/wire"
)

// MetadataRecord returns the encoded Metadata frame a library exports.
func (rt *Runtime) MetadataRecord() ([]byte, error) {
	f, err := wire.EncodeFrame(wire.TypeMetadata, codec.Default, uuid.Nil, "", rt.Metadata())
	if err != nil {
		return nil, err
	}
	return wire.Marshal(f)
}

// InvokeRecord answers one encoded Hook frame with an encoded Output or
// Error frame. Unreadable requests still get an error record.
func (rt *Runtime) InvokeRecord(ctx context.Context, req []byte) ([]byte, error) {
	f, err := wire.Unmarshal(req)
	if err != nil {
		return wire.Marshal(errorFrame(wire.Frame{Codec: codec.IDCBOR}, "bad request record: "+err.Error()))
	}
	return wire.Marshal(rt.respond(ctx, f))
}
