// ABOUTME: Loads the echo example script built as a C shared library
// ABOUTME: Exercises the purego binding against real exported entry points

//go:build darwin || linux

package handle

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
)

// buildEchoLibrary compiles cmd/echo-script with -buildmode=c-shared and
// returns the library path. It skips when cgo is unavailable.
func buildEchoLibrary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds a shared library")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}
	out, err := exec.Command(goBin, "env", "CGO_ENABLED").Output()
	if err != nil || strings.TrimSpace(string(out)) != "1" {
		t.Skip("cgo is not available")
	}

	ext := ".so"
	if runtime.GOOS == "darwin" {
		ext = ".dylib"
	}
	lib := filepath.Join(t.TempDir(), "libecho"+ext)
	cmd := exec.Command(goBin, "build", "-buildmode=c-shared", "-o", lib, "./cmd/echo-script")
	cmd.Dir = filepath.Join("..", "..")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("building echo-script: %v\n%s", err, out)
	}
	return lib
}

func TestDynamicLibrary_SharedObject(t *testing.T) {
	lib := buildEchoLibrary(t)

	for _, c := range []codec.Codec{codec.CBOR, codec.JSON} {
		t.Run(c.ID().String(), func(t *testing.T) {
			h, err := OpenDynamicLibrary(lib, c)
			require.NoError(t, err)

			md, err := h.Handshake(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "echo", md.Name)
			assert.Equal(t, shellapi.Version, md.Version)
			assert.Equal(t, hook.DynamicLibrary, md.Type)
			assert.Equal(t, []hook.Kind{shellapi.Eval.Kind(), shellapi.Shutdown.Kind()}, md.ListensFor)

			for _, line := range []string{"hello", "", strings.Repeat("x", 1<<16)} {
				payload, err := codec.Encode(c, line)
				require.NoError(t, err)
				out, err := h.Deliver(context.Background(), Request{Kind: shellapi.Eval.Kind(), Codec: c.ID(), Payload: payload})
				require.NoError(t, err)
				got, err := codec.Decode[string](c, out)
				require.NoError(t, err)
				assert.Equal(t, line, got)
			}

			_, err = h.Deliver(context.Background(), Request{Kind: "random-number", Codec: c.ID(), Payload: []byte("{}")})
			assert.ErrorIs(t, err, hook.ErrScript)

			require.NoError(t, h.Close())
			_, err = h.Deliver(context.Background(), Request{Kind: shellapi.Eval.Kind(), Codec: c.ID()})
			assert.ErrorIs(t, err, hook.ErrLoad)
		})
	}
}
