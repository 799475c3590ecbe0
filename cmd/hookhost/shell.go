// ABOUTME: shell subcommand: line-oriented example host for the shellapi hooks
// ABOUTME: Each line goes to Eval, then a RandomNumber is drawn; ":q" quits

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/host"
)

const (
	quitCommand = ":q"
	prompt      = "> "
)

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell driven by the example scripts",
		Long: `shell reads lines from standard input. Every line is sent to the scripts
listening for "eval" and the first answer is printed, then a random number
is requested from the scripts listening for "random-number".

Typing :q (or closing standard input) sends "shutdown" to every listening
script and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			interactive := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				interactive = term.IsTerminal(int(f.Fd()))
			}
			sh := &shell{d: d, in: cmd.InOrStdin(), out: cmd.OutOrStdout(), prompt: interactive}
			return sh.run(cmd.Context())
		},
	}
}

type shell struct {
	d      *host.Dispatcher
	in     io.Reader
	out    io.Writer
	prompt bool
}

func (s *shell) run(ctx context.Context) error {
	sc := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, prompt)
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == quitCommand {
			break
		}
		s.step(ctx, line)
	}
	if err := sc.Err(); err != nil {
		log.Warn("reading input: %v", err)
	}
	return s.quit(ctx)
}

// step evaluates one line. Only the first script's answer is used; failing
// scripts are logged and skipped.
func (s *shell) step(ctx context.Context, line string) {
	evals, err := host.Execute(ctx, s.d, shellapi.Eval, line)
	if out, ok := first(evals, err); ok {
		fmt.Fprintln(s.out, strings.TrimRight(out, "\n"))
	}
	nums, err := host.Execute(ctx, s.d, shellapi.RandomNumber, struct{}{})
	if n, ok := first(nums, err); ok {
		fmt.Fprintf(s.out, "Random number is %d\n", n)
	}
}

// quit gives every listening script a chance to clean up, then shuts down.
func (s *shell) quit(ctx context.Context) error {
	res, err := host.Execute(ctx, s.d, shellapi.Shutdown, struct{}{})
	if err != nil {
		log.Warn("shutdown hook: %v", err)
	} else if err := res.Err(); err != nil {
		log.Warn("shutdown hook: %v", err)
	}
	return s.d.Shutdown(context.WithoutCancel(ctx))
}

func first[O any](res host.Results[O], err error) (O, bool) {
	var zero O
	if err != nil {
		log.Warn("%v", err)
		return zero, false
	}
	all := res.All()
	if len(all) == 0 {
		return zero, false
	}
	if all[0].Err != nil {
		log.Warn("%v", all[0].Err)
		return zero, false
	}
	return all[0].Output, true
}
