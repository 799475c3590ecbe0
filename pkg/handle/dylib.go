// ABOUTME: Dynamic-library handle: calls a script loaded into the host process
// ABOUTME: Requests and replies cross the boundary as encoded frames

package handle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

// Exported symbol names every script library must provide.
const (
	SymbolMetadata = "hookwire_metadata"
	SymbolInvoke   = "hookwire_invoke"
	SymbolFree     = "hookwire_free"
)

// library is the resolved ABI of a loaded script. Returned slices are Go
// copies; the library's own buffers are already released.
type library interface {
	metadata() ([]byte, error)
	invoke(req []byte) ([]byte, error)
	close() error
}

// DynamicLibrary runs a script inside the host process. A crash inside the
// library takes the host down with it; nothing here can contain that.
type DynamicLibrary struct {
	path  string
	codec codec.Codec

	mu     sync.Mutex
	lib    library
	closed bool
}

// OpenDynamicLibrary loads the library at path and resolves its entry
// points. Every failure wraps hook.ErrLoad.
func OpenDynamicLibrary(path string, c codec.Codec) (*DynamicLibrary, error) {
	lib, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hook.ErrLoad, path, err)
	}
	return newDynamicLibrary(path, lib, c), nil
}

func newDynamicLibrary(path string, lib library, c codec.Codec) *DynamicLibrary {
	if c == nil {
		c = codec.Default
	}
	return &DynamicLibrary{path: path, codec: c, lib: lib}
}

func (*DynamicLibrary) sealed() {}

// Type reports hook.DynamicLibrary.
func (*DynamicLibrary) Type() hook.ScriptType { return hook.DynamicLibrary }

// Handshake reads the metadata record the library exports.
func (h *DynamicLibrary) Handshake(ctx context.Context) (hook.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return hook.Metadata{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return hook.Metadata{}, fmt.Errorf("%w: %s: %w", hook.ErrLoad, h.path, errClosed)
	}

	data, err := h.lib.metadata()
	if err != nil {
		return hook.Metadata{}, fmt.Errorf("%w: %s: %w", hook.ErrLoad, h.path, err)
	}
	resp, err := wire.Unmarshal(data)
	if err != nil {
		return hook.Metadata{}, fmt.Errorf("%w: %s: metadata record: %w", hook.ErrLoad, h.path, err)
	}
	if resp.Type != wire.TypeMetadata {
		return hook.Metadata{}, fmt.Errorf("%w: %s: metadata record has type %s", hook.ErrLoad, h.path, resp.Type)
	}
	return metadataOf(resp)
}

// Deliver passes req to the library. The call itself cannot be interrupted;
// ctx is only checked before it starts.
func (h *DynamicLibrary) Deliver(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frame := hookFrame(req)
	data, err := wire.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hook.ErrCodec, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, fmt.Errorf("%w: %s: %w", hook.ErrLoad, h.path, errClosed)
	}

	// A missing or malformed reply fails this call only; the library stays
	// loaded and later calls go through.
	out, err := h.lib.invoke(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hook.ErrCodec, h.path, err)
	}
	resp, err := wire.Unmarshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reply record: %w", hook.ErrCodec, h.path, err)
	}
	if err := checkReply(frame, resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hook.ErrCodec, h.path, err)
	}
	return outcome(resp)
}

// Close unloads the library. Later calls fail with hook.ErrLoad.
func (h *DynamicLibrary) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.lib.close()
}

var errNullRecord = errors.New("library returned no record")
