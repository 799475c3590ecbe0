// ABOUTME: One-shot handle: spawns a fresh script process for every request
// ABOUTME: Pipes one frame to stdin and expects exactly one frame back on stdout

package handle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

// waitDelay bounds how long Wait lingers on pipes held open by grandchildren.
const waitDelay = 2 * time.Second

// OneShot runs the script once per request. Processes never outlive the call
// that started them.
type OneShot struct {
	cmd    Command
	codec  codec.Codec
	spawns atomic.Int64
}

// NewOneShot returns a handle for cmd. No process is started until the first
// Handshake or Deliver.
func NewOneShot(cmd Command, c codec.Codec) *OneShot {
	if c == nil {
		c = codec.Default
	}
	return &OneShot{cmd: cmd, codec: c}
}

func (*OneShot) sealed() {}

// Type reports hook.OneShot.
func (*OneShot) Type() hook.ScriptType { return hook.OneShot }

// Spawns returns how many processes this handle has started.
func (h *OneShot) Spawns() int64 { return h.spawns.Load() }

// Handshake spawns the script once and exchanges Hello for Metadata.
func (h *OneShot) Handshake(ctx context.Context) (hook.Metadata, error) {
	req, err := helloFrame(h.codec)
	if err != nil {
		return hook.Metadata{}, err
	}
	resp, err := h.run(ctx, req)
	if err != nil {
		return hook.Metadata{}, err
	}
	return metadataOf(resp)
}

// Deliver spawns the script, sends req and returns the encoded output.
func (h *OneShot) Deliver(ctx context.Context, req Request) ([]byte, error) {
	resp, err := h.run(ctx, hookFrame(req))
	if err != nil {
		return nil, err
	}
	return outcome(resp)
}

// Close is a no-op: no process outlives a call.
func (*OneShot) Close() error { return nil }

// run spawns one process, writes req, closes stdin and collects the reply.
// Cancellation of ctx kills the whole process group.
func (h *OneShot) run(ctx context.Context, req wire.Frame) (wire.Frame, error) {
	data, err := wire.Marshal(req)
	if err != nil {
		return wire.Frame{}, fmt.Errorf("%w: %w", hook.ErrCodec, err)
	}

	cmd := exec.CommandContext(ctx, h.cmd.Path, h.cmd.Args...)
	cmd.Env = h.cmd.environ()
	cmd.Dir = h.cmd.Dir
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = waitDelay
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return wire.Frame{}, fmt.Errorf("%w: spawn %s: %w", hook.ErrProcess, h.cmd, err)
	}
	h.spawns.Add(1)
	log.Debug("oneshot %s: pid %d handling %s", h.cmd, cmd.Process.Pid, req.Type)

	runErr := cmd.Wait()
	if ctx.Err() != nil {
		return wire.Frame{}, fmt.Errorf("%w: %s: %w", hook.ErrProcess, h.cmd, ctx.Err())
	}
	if runErr != nil {
		return wire.Frame{}, fmt.Errorf("%w: %s: %w", hook.ErrProcess, h.cmd, runErr)
	}

	r := wire.NewReader(&stdout)
	resp, err := r.Read()
	if errors.Is(err, io.EOF) {
		return wire.Frame{}, fmt.Errorf("%w: %s exited without a response", hook.ErrProcess, h.cmd)
	}
	if err != nil {
		return wire.Frame{}, fmt.Errorf("%w: %s: %w", hook.ErrProcess, h.cmd, err)
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return wire.Frame{}, fmt.Errorf("%w: %s wrote more than one frame", hook.ErrProcess, h.cmd)
	}
	if err := checkReply(req, resp); err != nil {
		return wire.Frame{}, fmt.Errorf("%w: %s: %w", hook.ErrProcess, h.cmd, err)
	}
	return resp, nil
}
