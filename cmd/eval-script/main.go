// ABOUTME: One-shot example script: runs each input line as a command
// ABOUTME: Started once per hook; replies with the command's standard output

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/script"
)

const name = "evaluator"

func main() {
	rt := script.New(name, shellapi.Version, hook.OneShot)
	script.Handle(rt, shellapi.Eval, eval)
	script.Handle(rt, shellapi.Shutdown, func(context.Context, struct{}) (struct{}, error) {
		fmt.Fprintln(os.Stderr, "bye from eval-script")
		return struct{}{}, nil
	})
	script.Handle(rt, shellapi.Ping, func(context.Context, struct{}) (shellapi.Pong, error) {
		return shellapi.Pong{Name: name, Version: shellapi.Version}, nil
	})
	script.Main(rt)
}

// eval runs the first word of line with the rest as arguments.
func eval(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", fields[0], err)
	}
	return string(out), nil
}
