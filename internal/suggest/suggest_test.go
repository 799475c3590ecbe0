// ABOUTME: Tests for name suggestions
// ABOUTME: Verifies abbreviation, over-typed names and no-match behavior

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosest(t *testing.T) {
	t.Parallel()

	names := []string{"eval-script", "random-script", "echo"}
	cases := map[string]struct {
		in   string
		want string
		ok   bool
	}{
		"abbreviation": {"evl", "eval-script", true},
		"prefix":       {"rand", "random-script", true},
		"over-typed":   {"echoo", "echo", true},
		"no match":     {"zzz", "", false},
		"empty":        {"", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, ok := Closest(tc.in, names)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClosest_NoCandidates(t *testing.T) {
	t.Parallel()

	_, ok := Closest("eval", nil)
	assert.False(t, ok)
}

func TestRanked(t *testing.T) {
	t.Parallel()

	got := Ranked("app", []string{"apple", "banana", "application"})
	assert.ElementsMatch(t, []string{"apple", "application"}, got)
	assert.Empty(t, Ranked("zzz", []string{"cat", "dog"}))
}
