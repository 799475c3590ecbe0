// ABOUTME: version subcommand: prints the CLI, protocol and contract versions
// ABOUTME: Contract version is what the bundled example scripts report

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mauromedda/hookwire/internal/shellapi"
	"github.com/mauromedda/hookwire/pkg/wire"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hookhost %s\n", Version)
			fmt.Fprintf(w, "protocol %d\n", wire.Protocol)
			_, err := fmt.Fprintf(w, "shell contract %s (requires %s)\n", shellapi.Version, shellapi.Requirement)
			return err
		},
	}
}
