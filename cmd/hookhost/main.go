// ABOUTME: hookhost: command-line host that registers scripts from a manifest
// ABOUTME: Subcommands list scripts, deliver raw hooks and run the example shell

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mauromedda/hookwire/internal/config"
	"github.com/mauromedda/hookwire/internal/log"
	"github.com/mauromedda/hookwire/pkg/host"
	"github.com/mauromedda/hookwire/pkg/script"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootOptions struct {
	manifest string
	logLevel string
	envFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "hookhost",
		Short: "Register hookwire scripts and deliver hooks to them",
		Long: `hookhost loads a script manifest, registers every script it lists and
delivers hooks to them.

The manifest defaults to .hookwire/scripts.yaml in the current directory,
falling back to ~/.hookwire/scripts.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.setup()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.manifest, "manifest", "m", "", "script manifest path")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+script.LogLevelEnv+" or info)")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the manifest")

	cmd.AddCommand(
		newListCmd(opts),
		newExecCmd(opts),
		newTriggerCmd(opts),
		newShellCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the dotenv file and applies the log level.
func (o *rootOptions) setup() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", o.envFile, err)
		}
	}
	lvl := o.logLevel
	if lvl == "" {
		lvl = os.Getenv(script.LogLevelEnv)
	}
	if lvl == "" {
		return nil
	}
	l, err := log.ParseLevel(lvl)
	if err != nil {
		return err
	}
	log.SetLevel(l)
	return nil
}

func (o *rootOptions) manifestPath() (string, error) {
	if o.manifest != "" {
		return o.manifest, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.DefaultManifestFile(wd), nil
}

// dispatcher registers the manifest's scripts. Rejected scripts are logged
// by host.Register and left out; only manifest problems are fatal.
func (o *rootOptions) dispatcher(ctx context.Context) (*host.Dispatcher, error) {
	path, err := o.manifestPath()
	if err != nil {
		return nil, err
	}
	m, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	req, err := m.VersionRequirement()
	if err != nil {
		return nil, err
	}
	hostOpts, err := m.HostOptions()
	if err != nil {
		return nil, err
	}
	d, err := host.Register(ctx, m.Candidates(), req, hostOpts...)
	if err != nil {
		log.Debug("manifest %s: some scripts were rejected", path)
	}
	log.Debug("registered %d scripts from %s", d.Len(), path)
	return d, nil
}

// closeDispatcher shuts d down and logs close failures.
func closeDispatcher(d *host.Dispatcher) {
	if err := d.Shutdown(context.Background()); err != nil {
		log.Warn("shutdown: %v", err)
	}
}
