// ABOUTME: list subcommand: table of registered scripts
// ABOUTME: Shows name, version, type, state, listened hooks and path

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mauromedda/hookwire/internal/table"
	"github.com/mauromedda/hookwire/pkg/host"
)

const maxCellWidth = 48

var (
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Register the manifest's scripts and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDispatcher(d)
			return renderScripts(cmd.OutOrStdout(), d.Scripts())
		},
	}
}

func renderScripts(w io.Writer, scripts []host.ScriptInfo) error {
	if len(scripts) == 0 {
		_, err := fmt.Fprintln(w, "no scripts registered")
		return err
	}
	t := &table.Table{
		Headers:  []string{"NAME", "VERSION", "TYPE", "STATE", "LISTENS", "PATH"},
		MaxWidth: maxCellWidth,
	}
	for _, s := range scripts {
		kinds := make([]string, len(s.Metadata.ListensFor))
		for i, k := range s.Metadata.ListensFor {
			kinds[i] = string(k)
		}
		t.Append(
			s.Metadata.Name,
			s.Metadata.Version,
			s.Metadata.Type.String(),
			stateLabel(s),
			strings.Join(kinds, ","),
			s.Path,
		)
	}
	style := table.DefaultStyle()
	style.Cell = func(col int, value string) lipgloss.Style {
		if col != 3 {
			return lipgloss.NewStyle()
		}
		switch value {
		case host.Active.String():
			return activeStyle
		case host.Inactive.String():
			return inactiveStyle
		default:
			return failedStyle
		}
	}
	return t.Render(w, style)
}

func stateLabel(s host.ScriptInfo) string {
	if s.Failed != nil {
		return "failed"
	}
	return s.State.String()
}
