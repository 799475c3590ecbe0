// ABOUTME: Display width of cell text with grapheme-aware segmentation
// ABOUTME: ANSI escape sequences count as zero columns

package table

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// VisibleWidth returns the number of terminal columns s occupies.
func VisibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	stripped := StripANSI(s)
	w := 0
	state := -1
	for len(stripped) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeClusterInString(stripped, state)
		if r, _ := utf8.DecodeRuneInString(cluster); r != utf8.RuneError {
			w += runewidth.RuneWidth(r)
		}
		stripped = rest
		state = newState
	}
	return w
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// StripANSI removes CSI and OSC escape sequences from s.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = skipANSISequence(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// skipANSISequence returns the index just past the escape sequence at s[i].
func skipANSISequence(s string, i int) int {
	i++
	if i >= len(s) {
		return i
	}
	switch s[i] {
	case '[':
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return i
	case ']':
		for i++; i < len(s); i++ {
			if s[i] == '\x07' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	default:
		return i + 1
	}
}

// Truncate shortens s to at most max columns, marking the cut with "…".
func Truncate(s string, max int) string {
	if VisibleWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(StripANSI(s), max, "…")
}
