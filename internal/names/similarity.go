package names

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores how alike two names are, in [0,1]. Both inputs are
// normalized and lowercased before comparison; identical forms score
// exactly 1.0, otherwise the difflib sequence-matching ratio is used.
//
// SequenceMatcher's ratio is not guaranteed symmetric in its argument
// order, so the larger of both orientations is returned.
func Similarity(a, b string) float64 {
	na := strings.ToLower(Normalize(a))
	nb := strings.ToLower(Normalize(b))
	if na == nb {
		return 1.0
	}

	ra, rb := explode(na), explode(nb)
	forward := difflib.NewMatcher(ra, rb).Ratio()
	backward := difflib.NewMatcher(rb, ra).Ratio()
	if backward > forward {
		return backward
	}
	return forward
}

// explode splits a string into per-rune elements for character-level
// sequence matching.
func explode(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
