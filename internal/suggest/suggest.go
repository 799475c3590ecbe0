// ABOUTME: "Did you mean" suggestions for unknown script names
// ABOUTME: Thin wrapper over sahilm/fuzzy ranking registered names

package suggest

import "github.com/sahilm/fuzzy"

// Closest returns the best-ranked candidate for name. It first treats name
// as an abbreviation of a candidate, then a candidate as an abbreviation of
// name, which covers both truncated and over-typed names.
func Closest(name string, candidates []string) (string, bool) {
	if name == "" || len(candidates) == 0 {
		return "", false
	}
	if matches := fuzzy.Find(name, candidates); len(matches) > 0 {
		return matches[0].Str, true
	}

	best, bestScore := "", 0
	for _, c := range candidates {
		if c == "" {
			continue
		}
		m := fuzzy.Find(c, []string{name})
		if len(m) == 0 {
			continue
		}
		if best == "" || m[0].Score > bestScore {
			best, bestScore = c, m[0].Score
		}
	}
	return best, best != ""
}

// Ranked returns every candidate that fuzzily matches pattern, best first.
func Ranked(pattern string, candidates []string) []string {
	matches := fuzzy.Find(pattern, candidates)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
