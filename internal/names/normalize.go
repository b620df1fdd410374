// Package names normalizes and reconciles author name strings.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctuation maps name punctuation that varies between sources to
// spaces, so "O'Brien", "O’Brien" and "OBrien"-style variants collapse
// to comparable forms.
var punctuation = strings.NewReplacer(
	"'", " ",
	"’", " ",
	"`", " ",
	`"`, " ",
	`\`, " ",
	"-", " ",
)

// fold decomposes accented characters and drops the combining marks,
// so "García" compares equal to "Garcia".
var fold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes a raw name for comparison and storage:
// punctuation to spaces, diacritics folded, whitespace collapsed.
// Case is preserved; callers that need case-insensitive comparison
// lower the result themselves. Normalize is idempotent.
func Normalize(raw string) string {
	s := punctuation.Replace(raw)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase returns the display form of a normalized name, with each
// word capitalized.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
