// ABOUTME: Tests for the daemon handle against helper processes and in-memory pipes
// ABOUTME: Covers reuse, permanent failure, timeouts and request serialization

package handle

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/wire"
)

func startDaemon(t *testing.T, mode string) *Daemon {
	t.Helper()
	d, err := StartDaemon(helperCommand(t, mode), codec.CBOR)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDaemon_ReusesOneProcess(t *testing.T) {
	t.Parallel()

	d := startDaemon(t, "daemon")
	assert.Equal(t, hook.Daemon, d.Type())

	md, err := d.Handshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "helper-daemon", md.Name)
	assert.Equal(t, hook.Daemon, md.Type)

	for range 3 {
		out, err := d.Deliver(context.Background(), pidRequest(t))
		require.NoError(t, err)
		assert.Equal(t, d.PID(), decode[int](t, out))
	}

	out, err := d.Deliver(context.Background(), encode(t, echoHook, "hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", decode[string](t, out))
	assert.NoError(t, d.Failed())
}

func TestDaemon_ScriptErrorKeepsHandleHealthy(t *testing.T) {
	t.Parallel()

	d := startDaemon(t, "daemon")
	_, err := d.Deliver(context.Background(), Request{Kind: "unknown", Codec: codec.IDCBOR, Payload: []byte{0xf6}})
	assert.ErrorIs(t, err, hook.ErrScript)
	assert.NoError(t, d.Failed())

	out, err := d.Deliver(context.Background(), encode(t, echoHook, "still here"))
	require.NoError(t, err)
	assert.Equal(t, "echo:still here", decode[string](t, out))
}

func TestDaemon_CrashFailsPermanently(t *testing.T) {
	t.Parallel()

	d := startDaemon(t, "daemon")
	pid := d.PID()

	_, err := d.Deliver(context.Background(), encode(t, crashHook, 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, hook.ErrProcess)
	assert.ErrorIs(t, d.Failed(), hook.ErrProcess)

	start := time.Now()
	_, err = d.Deliver(context.Background(), encode(t, echoHook, "again"))
	assert.ErrorIs(t, err, hook.ErrProcess)
	_, err = d.Handshake(context.Background())
	assert.ErrorIs(t, err, hook.ErrProcess)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, pid, d.PID())
}

func TestDaemon_DeadlineFailsPermanently(t *testing.T) {
	t.Parallel()

	d := startDaemon(t, "daemon")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := d.Deliver(ctx, encode(t, sleepHook, 10000))
	assert.ErrorIs(t, err, hook.ErrProcess)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = d.Deliver(context.Background(), encode(t, echoHook, "late"))
	assert.ErrorIs(t, err, hook.ErrProcess)
}

func TestDaemon_WrongIDFails(t *testing.T) {
	t.Parallel()

	d := startDaemon(t, "wrong-id")
	_, err := d.Handshake(context.Background())
	assert.ErrorIs(t, err, hook.ErrProcess)
	assert.ErrorContains(t, err, "does not match")
}

func TestDaemon_CloseIsCleanAndFinal(t *testing.T) {
	t.Parallel()

	d, err := StartDaemon(helperCommand(t, "daemon"), nil)
	require.NoError(t, err)
	_, err = d.Handshake(context.Background())
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err = d.Deliver(context.Background(), encode(t, echoHook, "x"))
	assert.ErrorIs(t, err, hook.ErrProcess)
}

func TestDaemon_SpawnFailure(t *testing.T) {
	t.Parallel()

	_, err := StartDaemon(Command{Path: "/nonexistent/hookwire-daemon"}, nil)
	assert.ErrorIs(t, err, hook.ErrProcess)
}

// fakeScript answers each request after a delay on its own goroutine, so
// overlapping requests from the handle would be visible as pending > 1.
type fakeScript struct {
	stdinR  *io.PipeReader
	stdoutW *io.PipeWriter

	writeMu    sync.Mutex
	pending    atomic.Int32
	maxPending atomic.Int32

	exited   chan struct{}
	killOnce sync.Once
}

func newFakeDaemon(t *testing.T) (*Daemon, *fakeScript) {
	t.Helper()
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	f := &fakeScript{stdinR: stdinR, stdoutW: stdoutW, exited: make(chan struct{})}
	go f.serve()
	d := newDaemon("fake", stdinW, stdoutR, codec.CBOR, f.kill, f.exited)
	d.grace = 100 * time.Millisecond
	t.Cleanup(func() { d.Close() })
	return d, f
}

func (f *fakeScript) kill() error {
	f.killOnce.Do(func() {
		f.stdinR.Close()
		f.stdoutW.Close()
		close(f.exited)
	})
	return nil
}

func (f *fakeScript) serve() {
	r := wire.NewReader(f.stdinR)
	w := wire.NewWriter(f.stdoutW)
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		f.kill()
	}()
	for {
		req, err := r.Read()
		if err != nil {
			return
		}
		n := f.pending.Add(1)
		for {
			m := f.maxPending.Load()
			if n <= m || f.maxPending.CompareAndSwap(m, n) {
				break
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
			in, _ := codec.Decode[string](codec.CBOR, req.Payload)
			payload, _ := codec.Encode(codec.CBOR, "echo:"+in)
			f.pending.Add(-1)
			f.writeMu.Lock()
			w.Write(req.Reply(wire.TypeOutput, payload))
			f.writeMu.Unlock()
		}()
	}
}

func TestDaemon_SerializesConcurrentCallers(t *testing.T) {
	t.Parallel()

	d, f := newFakeDaemon(t)

	reqs := make([]Request, 20)
	for i := range reqs {
		reqs[i] = encode(t, echoHook, string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, 20)
	outs := make([]string, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := d.Deliver(context.Background(), reqs[i])
			errs[i] = err
			if err == nil {
				outs[i], _ = codec.Decode[string](codec.CBOR, out)
			}
		}()
	}
	wg.Wait()

	for i := range 20 {
		require.NoError(t, errs[i])
		assert.Equal(t, "echo:"+string(rune('a'+i)), outs[i])
	}
	assert.Equal(t, int32(1), f.maxPending.Load())
}

func TestDaemon_QueuedCallerGivesUpWithoutHarm(t *testing.T) {
	t.Parallel()

	d, _ := newFakeDaemon(t)
	require.NoError(t, d.sem.Acquire(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Deliver(ctx, encode(t, echoHook, "queued"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, hook.ErrProcess)

	d.sem.Release(1)
	assert.NoError(t, d.Failed())
	out, err := d.Deliver(context.Background(), encode(t, echoHook, "next"))
	require.NoError(t, err)
	assert.Equal(t, "echo:next", decode[string](t, out))
}

func TestDaemon_BrokenPipeFails(t *testing.T) {
	t.Parallel()

	d, f := newFakeDaemon(t)
	f.kill()

	_, err := d.Deliver(context.Background(), encode(t, echoHook, "x"))
	assert.ErrorIs(t, err, hook.ErrProcess)
	assert.ErrorIs(t, d.Failed(), hook.ErrProcess)
}
