// ABOUTME: Script-side runtime: registers typed handlers and serves host frames
// ABOUTME: Answers Hello with metadata and Hook frames with outputs or error records

// Package script is what a script author links against. It hides framing,
// encoding and the handshake behind typed handler registration.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"slices"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

type handlerFunc func(ctx context.Context, c codec.Codec, payload []byte) ([]byte, error)

// Runtime holds a script's identity and its handlers.
type Runtime struct {
	meta     hook.Metadata
	handlers map[hook.Kind]handlerFunc
}

// New creates a runtime for a script of the given type. The version should
// be a semantic version such as "1.2.0".
func New(name, version string, typ hook.ScriptType) *Runtime {
	return &Runtime{
		meta:     hook.Metadata{Name: name, Version: version, Type: typ},
		handlers: make(map[hook.Kind]handlerFunc),
	}
}

// Handle registers fn as the handler for def's kind. Registering the same
// kind again replaces the previous handler.
func Handle[I, O any](rt *Runtime, def hook.Def[I, O], fn func(ctx context.Context, in I) (O, error)) {
	kind := def.Kind()
	if _, ok := rt.handlers[kind]; !ok {
		rt.meta.ListensFor = append(rt.meta.ListensFor, kind)
	}
	rt.handlers[kind] = func(ctx context.Context, c codec.Codec, payload []byte) ([]byte, error) {
		in, err := codec.Decode[I](c, payload)
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return codec.Encode(c, out)
	}
}

// Metadata returns what the script reports during the handshake.
func (rt *Runtime) Metadata() hook.Metadata {
	return rt.meta.Clone()
}

// Listens reports whether a handler is registered for kind.
func (rt *Runtime) Listens(kind hook.Kind) bool {
	return slices.Contains(rt.meta.ListensFor, kind)
}

// Serve answers frames read from r on w. A one-shot script answers a single
// frame and returns; a daemon serves until r ends. A clean end of input is
// not an error.
func (rt *Runtime) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := wire.NewReader(r)
	writer := wire.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		if err := writer.Write(rt.respond(ctx, req)); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
		if rt.meta.Type == hook.OneShot {
			return nil
		}
	}
}

// respond never fails: every problem becomes an error record.
func (rt *Runtime) respond(ctx context.Context, req wire.Frame) wire.Frame {
	c, err := codec.ByID(req.Codec)
	if err != nil {
		return errorFrame(req, err.Error())
	}

	switch req.Type {
	case wire.TypeHello:
		payload, err := codec.Encode(c, rt.Metadata())
		if err != nil {
			return errorFrame(req, err.Error())
		}
		return req.Reply(wire.TypeMetadata, payload)
	case wire.TypeHook:
		h, ok := rt.handlers[req.Kind]
		if !ok {
			return errorFrame(req, fmt.Sprintf("%s does not handle %q", rt.meta.Name, req.Kind))
		}
		payload, err := invoke(ctx, h, c, req)
		if err != nil {
			log.Debug("%s: %s handler: %v", rt.meta.Name, req.Kind, err)
			return errorFrame(req, err.Error())
		}
		return req.Reply(wire.TypeOutput, payload)
	default:
		return errorFrame(req, fmt.Sprintf("unexpected %s frame", req.Type))
	}
}

func invoke(ctx context.Context, h handlerFunc, c codec.Codec, req wire.Frame) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in %s handler: %v\n%s", req.Kind, r, debug.Stack())
			out, err = nil, fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, c, req.Payload)
}

// errorFrame answers req with a Failure. Unknown codecs fall back to CBOR so
// the record stays decodable.
func errorFrame(req wire.Frame, msg string) wire.Frame {
	c, err := codec.ByID(req.Codec)
	if err != nil {
		c = codec.CBOR
	}
	reply := req.Reply(wire.TypeError, nil)
	reply.Codec = c.ID()
	payload, err := codec.Encode(c, wire.Failure{Message: msg})
	if err == nil {
		reply.Payload = payload
	}
	return reply
}
