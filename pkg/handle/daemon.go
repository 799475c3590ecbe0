// ABOUTME: Daemon handle: one long-lived script process serving many requests
// ABOUTME: Serializes requests; any channel failure permanently fails the handle

package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

// DefaultCloseGrace is how long Close waits for a daemon to exit on its own
// after stdin is closed.
const DefaultCloseGrace = 2 * time.Second

var errClosed = errors.New("handle closed")

// Daemon talks to one persistent script process over its stdin and stdout.
// At most one request is outstanding at a time.
type Daemon struct {
	name   string
	pid    int
	codec  codec.Codec
	stdin  io.WriteCloser
	reader *wire.Reader
	writer *wire.Writer
	kill   func() error
	exited <-chan struct{}
	waitFn func() error

	sem *semaphore.Weighted

	mu     sync.Mutex
	failed error

	closeOnce sync.Once
	closeErr  error
	grace     time.Duration
}

// StartDaemon spawns cmd and returns a handle to it. The process inherits the
// host's stderr. Its lifetime is bound to the handle, not to any context.
func StartDaemon(cmd Command, c codec.Codec) (*Daemon, error) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %w", hook.ErrProcess, err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		return nil, fmt.Errorf("%w: stdout pipe: %w", hook.ErrProcess, err)
	}

	proc := exec.Command(cmd.Path, cmd.Args...)
	proc.Env = cmd.environ()
	proc.Dir = cmd.Dir
	proc.Stdin = stdinR
	proc.Stdout = stdoutW
	proc.Stderr = os.Stderr
	setProcGroup(proc)

	startErr := proc.Start()
	stdinR.Close()
	stdoutW.Close()
	if startErr != nil {
		stdinW.Close()
		stdoutR.Close()
		return nil, fmt.Errorf("%w: spawn %s: %w", hook.ErrProcess, cmd, startErr)
	}

	exited := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = proc.Wait()
		close(exited)
	}()

	d := newDaemon(cmd.String(), stdinW, stdoutR, c, func() error {
		err := killProcGroup(proc)
		stdoutR.Close()
		return err
	}, exited)
	d.pid = proc.Process.Pid
	d.waitFn = func() error {
		<-exited
		return waitErr
	}
	log.Debug("daemon %s: started pid %d", cmd, d.pid)
	return d, nil
}

func newDaemon(name string, stdin io.WriteCloser, stdout io.Reader, c codec.Codec, kill func() error, exited <-chan struct{}) *Daemon {
	if c == nil {
		c = codec.Default
	}
	return &Daemon{
		name:   name,
		codec:  c,
		stdin:  stdin,
		reader: wire.NewReader(stdout),
		writer: wire.NewWriter(stdin),
		kill:   kill,
		exited: exited,
		sem:    semaphore.NewWeighted(1),
		grace:  DefaultCloseGrace,
	}
}

func (*Daemon) sealed() {}

// Type reports hook.Daemon.
func (*Daemon) Type() hook.ScriptType { return hook.Daemon }

// PID returns the process id, or 0 when not backed by a process.
func (d *Daemon) PID() int { return d.pid }

// Failed returns the error that moved the handle into its failed state,
// or nil while it is healthy.
func (d *Daemon) Failed() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// Handshake exchanges Hello for Metadata over the open pipes.
func (d *Daemon) Handshake(ctx context.Context) (hook.Metadata, error) {
	req, err := helloFrame(d.codec)
	if err != nil {
		return hook.Metadata{}, err
	}
	resp, err := d.roundTrip(ctx, req)
	if err != nil {
		return hook.Metadata{}, err
	}
	return metadataOf(resp)
}

// Deliver sends req and waits for the matching reply.
func (d *Daemon) Deliver(ctx context.Context, req Request) ([]byte, error) {
	resp, err := d.roundTrip(ctx, hookFrame(req))
	if err != nil {
		return nil, err
	}
	return outcome(resp)
}

type reply struct {
	frame wire.Frame
	err   error
}

func (d *Daemon) roundTrip(ctx context.Context, req wire.Frame) (wire.Frame, error) {
	// A caller giving up while queued does not affect the handle.
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return wire.Frame{}, fmt.Errorf("daemon %s busy: %w", d.name, err)
	}
	defer d.sem.Release(1)

	if err := d.Failed(); err != nil {
		return wire.Frame{}, err
	}

	ch := make(chan reply, 1)
	go func() {
		if err := d.writer.Write(req); err != nil {
			ch <- reply{err: fmt.Errorf("write %s: %w", req.Type, err)}
			return
		}
		f, err := d.reader.Read()
		if errors.Is(err, io.EOF) {
			err = errors.New("script closed its output")
		}
		ch <- reply{frame: f, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return wire.Frame{}, d.fail(r.err)
		}
		if err := checkReply(req, r.frame); err != nil {
			return wire.Frame{}, d.fail(err)
		}
		return r.frame, nil
	case <-ctx.Done():
		return wire.Frame{}, d.fail(fmt.Errorf("no reply to %s: %w", req.Type, ctx.Err()))
	}
}

// fail records cause as the permanent failure and kills the process. Only
// the first cause is kept.
func (d *Daemon) fail(cause error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed != nil {
		return d.failed
	}
	d.failed = fmt.Errorf("%w: daemon %s: %w", hook.ErrProcess, d.name, cause)
	log.Warn("daemon %s failed: %v", d.name, cause)
	if err := d.kill(); err != nil {
		log.Debug("daemon %s: kill: %v", d.name, err)
	}
	return d.failed
}

// Close closes stdin so the script sees a clean end of input, waits up to
// the grace period for it to exit, then kills the process group.
func (d *Daemon) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		alreadyFailed := d.failed != nil
		if !alreadyFailed {
			d.failed = fmt.Errorf("%w: daemon %s: %w", hook.ErrProcess, d.name, errClosed)
		}
		d.mu.Unlock()

		d.stdin.Close()
		select {
		case <-d.exited:
		case <-time.After(d.grace):
			log.Warn("daemon %s did not exit within %v, killing", d.name, d.grace)
			if err := d.kill(); err != nil {
				d.closeErr = err
			}
			<-d.exited
			return
		}
		if alreadyFailed {
			return
		}
		d.kill()
		if d.waitFn != nil {
			var exitErr *exec.ExitError
			if err := d.waitFn(); err != nil && !errors.As(err, &exitErr) {
				d.closeErr = err
			} else if exitErr != nil && exitErr.ExitCode() > 0 {
				d.closeErr = fmt.Errorf("daemon %s exited: %w", d.name, err)
			}
		}
	})
	return d.closeErr
}
