// ABOUTME: Script handles: the closed set of ways the host can talk to a script
// ABOUTME: OneShot, Daemon and DynamicLibrary share one request/response contract

// Package handle implements the three script execution models. A Handle
// delivers already-encoded hook payloads and returns the encoded output; the
// typed layer lives in package host.
package handle

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

// Handle is a live connection to one script. The set of implementations is
// closed: *OneShot, *Daemon and *DynamicLibrary.
type Handle interface {
	// Type reports the execution model.
	Type() hook.ScriptType
	// Handshake asks the script for its metadata.
	Handshake(ctx context.Context) (hook.Metadata, error)
	// Deliver sends one encoded hook and returns the encoded output.
	Deliver(ctx context.Context, req Request) ([]byte, error)
	// Close releases the script. It is safe to call more than once.
	Close() error

	sealed()
}

// Request is one encoded hook invocation.
type Request struct {
	Kind    hook.Kind
	Codec   codec.ID
	Payload []byte
}

// Command describes how to start a process-based script.
type Command struct {
	Path string
	Args []string
	// Env entries are appended to the host environment.
	Env []string
	Dir string
}

func (c Command) environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	return append(os.Environ(), c.Env...)
}

func (c Command) String() string {
	return c.Path
}

func hookFrame(req Request) wire.Frame {
	return wire.NewRequest(wire.TypeHook, req.Codec, req.Kind, req.Payload)
}

func helloFrame(c codec.Codec) (wire.Frame, error) {
	return wire.EncodeFrame(wire.TypeHello, c, uuid.New(), "", wire.Hello{Protocol: wire.Protocol})
}

// checkReply validates that resp answers req. The returned error is a
// protocol violation; each handle wraps it with its own sentinel.
func checkReply(req, resp wire.Frame) error {
	if resp.ID != req.ID {
		return fmt.Errorf("response id %s does not match request id %s", resp.ID, req.ID)
	}
	want := wire.TypeOutput
	if req.Type == wire.TypeHello {
		want = wire.TypeMetadata
	}
	if resp.Type != want && resp.Type != wire.TypeError {
		return fmt.Errorf("unexpected %s frame in reply to %s", resp.Type, req.Type)
	}
	return nil
}

// outcome returns the output payload or the script's reported error.
func outcome(resp wire.Frame) ([]byte, error) {
	if resp.Type == wire.TypeError {
		return nil, wire.Failed(resp)
	}
	return resp.Payload, nil
}

func metadataOf(resp wire.Frame) (hook.Metadata, error) {
	if resp.Type == wire.TypeError {
		return hook.Metadata{}, wire.Failed(resp)
	}
	return wire.DecodePayload[hook.Metadata](resp)
}
