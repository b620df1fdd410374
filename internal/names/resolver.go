package names

import "strings"

// DefaultThreshold is the minimum similarity at which an external
// candidate name replaces the locally parsed one. Short names and bare
// initials score unreliably, so this is a tunable, not a law.
const DefaultThreshold = 0.5

// Resolver reconciles raw BibTeX author fields against candidate name
// lists from an external authority.
type Resolver struct {
	// Threshold is the acceptance similarity; candidates at or below
	// it are ignored.
	Threshold float64
}

// NewResolver returns a Resolver with the default threshold.
func NewResolver() *Resolver {
	return &Resolver{Threshold: DefaultThreshold}
}

// SplitAuthors splits a BibTeX author field on the " and " conjunction
// and reorders "Last, First" entries to "First Last". Empty tokens are
// dropped; an empty or blank field yields nil.
func SplitAuthors(field string) []string {
	field = strings.ReplaceAll(field, "\n", " ")

	var authors []string
	for _, tok := range strings.Split(field, " and ") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if last, first, found := strings.Cut(tok, ","); found {
			tok = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
			tok = strings.TrimSpace(tok)
		}
		authors = append(authors, tok)
	}
	return authors
}

// Resolve produces the display-cased author list for one record. Each
// parsed author is normalized; when candidates are present, the most
// similar candidate above the threshold replaces the local form. An
// empty candidate list (the authority was unavailable or found nothing)
// leaves every local form as-is.
func (r *Resolver) Resolve(rawAuthorField string, candidates []string) []string {
	parsed := SplitAuthors(rawAuthorField)
	if len(parsed) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(parsed))
	for _, name := range parsed {
		chosen := Normalize(name)
		if best, sim := closest(candidates, name); sim > r.Threshold {
			chosen = Normalize(best)
		}
		resolved = append(resolved, TitleCase(chosen))
	}
	return resolved
}

// closest returns the candidate most similar to name, with its score.
// Ties keep the first candidate encountered.
func closest(candidates []string, name string) (string, float64) {
	best, bestSim := "", -1.0
	for _, c := range candidates {
		if sim := Similarity(c, name); sim > bestSim {
			best, bestSim = c, sim
		}
	}
	return best, bestSim
}
