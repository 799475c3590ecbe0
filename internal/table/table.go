// ABOUTME: Column-aligned tables for CLI listings, styled with lipgloss
// ABOUTME: Pads by display width so wide characters keep columns aligned

// Package table renders plain or styled text tables.
package table

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style colors table parts. The zero value renders plain text.
type Style struct {
	Header lipgloss.Style
	// Cell, when set, styles individual cells by column and value.
	Cell func(col int, value string) lipgloss.Style
}

// DefaultStyle bolds the header.
func DefaultStyle() Style {
	return Style{Header: lipgloss.NewStyle().Bold(true)}
}

// Table is a header row plus data rows.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int
}

// Append adds one row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes t to w with two spaces between columns.
func (t *Table) Render(w io.Writer, style Style) error {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = VisibleWidth(h)
	}
	for _, row := range t.Rows {
		for i := range min(len(row), len(widths)) {
			cell := t.clip(row[i])
			widths[i] = max(widths[i], VisibleWidth(cell))
		}
	}

	var b strings.Builder
	t.line(&b, t.Headers, widths, func(_ int, s string) string { return style.Header.Render(s) })
	for _, row := range t.Rows {
		t.line(&b, row, widths, func(col int, s string) string {
			if style.Cell == nil {
				return s
			}
			return style.Cell(col, s).Render(s)
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Table) clip(s string) string {
	if t.MaxWidth > 0 {
		return Truncate(s, t.MaxWidth)
	}
	return s
}

func (t *Table) line(b *strings.Builder, cells []string, widths []int, render func(int, string) string) {
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = t.clip(cells[i])
		}
		pad := widths[i] - VisibleWidth(cell)
		b.WriteString(render(i, cell))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", pad+2))
		}
	}
	b.WriteByte('\n')
}
