package bibtex

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// accentMarks maps LaTeX accent commands to Unicode combining marks.
var accentMarks = map[string]rune{
	"'": 0x0301, // acute
	"`": 0x0300, // grave
	`"`: 0x0308, // diaeresis
	"^": 0x0302, // circumflex
	"~": 0x0303, // tilde
	"=": 0x0304, // macron
	".": 0x0307, // dot above
	"v": 0x030C, // caron
	"c": 0x0327, // cedilla
	"u": 0x0306, // breve
	"H": 0x030B, // double acute
	"k": 0x0328, // ogonek
	"r": 0x030A, // ring above
}

// accentRe matches accent commands in their common spellings:
// \'e, \'{e}, {\'e}, \v{s}, \c c.
var accentRe = regexp.MustCompile("\\\\(['`\"^~=.]|[vcuHkr])\\s*\\{?\\\\?([a-zA-Z])\\}?")

// specialChars replaces LaTeX special-letter commands and escapes.
var specialChars = strings.NewReplacer(
	`\ss`, "ß",
	`\o`, "ø",
	`\O`, "Ø",
	`\ae`, "æ",
	`\AE`, "Æ",
	`\aa`, "å",
	`\AA`, "Å",
	`\l`, "ł",
	`\L`, "Ł",
	`\i`, "i",
	`\j`, "j",
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	"~", " ",
	"``", `"`,
	"''", `"`,
	`---`, "—",
	`--`, "–",
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// DecodeLaTeX converts common LaTeX escape sequences in a field value to
// Unicode, strips grouping braces, and collapses whitespace. BibTeX
// files in the wild mix encoded and plain-Unicode accents freely, so the
// result is NFC-normalized either way.
func DecodeLaTeX(s string) string {
	s = accentRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := accentRe.FindStringSubmatch(m)
		mark, ok := accentMarks[sub[1]]
		if !ok {
			return m
		}
		return sub[2] + string(mark)
	})
	s = specialChars.Replace(s)
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}
