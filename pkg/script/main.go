// ABOUTME: Process entry point for one-shot and daemon scripts
// ABOUTME: Serves stdin/stdout and reports protocol failures on stderr

package script

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mauromedda/hookwire/internal/log"
)

// LogLevelEnv names the environment variable scripts read their log level from.
const LogLevelEnv = "HOOKWIRE_LOG_LEVEL"

// Main serves rt on the process's stdin and stdout and exits. It exits with
// status 1 if the frame stream is broken.
func Main(rt *Runtime) {
	if lvl := os.Getenv(LogLevelEnv); lvl != "" {
		if l, err := log.ParseLevel(lvl); err == nil {
			log.SetLevel(l)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := rt.Serve(ctx, os.Stdin, os.Stdout)
	stop()
	if err != nil {
		log.Error("%s: %v", rt.meta.Name, err)
		os.Exit(1)
	}
	os.Exit(0)
}
