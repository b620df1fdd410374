package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Parse reads BibTeX entries from r.
//
// The parser is tolerant of the output real reference managers produce:
// braced and quoted field values, nested braces, string concatenation
// with #, and @comment/@string/@preamble blocks (which are skipped).
// A structural error (unbalanced braces, truncated entry) fails the
// whole input, since the remainder cannot be trusted.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return parse(string(data))
}

// ParseFile parses a .bib file.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

type parser struct {
	src []rune
	pos int
}

func parse(src string) ([]Entry, error) {
	p := &parser{src: []rune(src)}
	var entries []Entry

	for {
		if !p.seek('@') {
			break
		}
		p.pos++ // consume @

		entryType := strings.ToLower(p.readIdent())
		if entryType == "" {
			return nil, p.errorf("expected entry type after @")
		}

		switch entryType {
		case "comment", "string", "preamble":
			if err := p.skipGroup(); err != nil {
				return nil, err
			}
			continue
		}

		entry, err := p.readEntry(entryType)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// seek advances to the next occurrence of c. Returns false at EOF.
func (p *parser) seek(c rune) bool {
	for p.pos < len(p.src) {
		if p.src[p.pos] == c {
			return true
		}
		p.pos++
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

// skipGroup skips a balanced {...} or (...) group.
func (p *parser) skipGroup() error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return p.errorf("unexpected end of input")
	}
	open := p.src[p.pos]
	var close rune
	switch open {
	case '{':
		close = '}'
	case '(':
		close = ')'
	default:
		return p.errorf("expected { or (, got %q", open)
	}
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
	}
	return p.errorf("unbalanced %q group", open)
}

// readEntry parses the body of one @type{key, field = value, ...} entry.
func (p *parser) readEntry(entryType string) (Entry, error) {
	entry := Entry{Type: entryType, Fields: make(map[string]string)}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return entry, p.errorf("expected { after @%s", entryType)
	}
	p.pos++

	// Citation key runs to the first comma.
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != '}' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return entry, p.errorf("truncated entry @%s", entryType)
	}
	entry.Key = strings.TrimSpace(string(p.src[start:p.pos]))
	if p.src[p.pos] == '}' {
		p.pos++
		return entry, nil
	}
	p.pos++ // consume comma

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return entry, p.errorf("truncated entry %q", entry.Key)
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return entry, nil
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}

		name := strings.ToLower(p.readIdent())
		if name == "" {
			return entry, p.errorf("expected field name in entry %q", entry.Key)
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return entry, p.errorf("expected = after field %q in entry %q", name, entry.Key)
		}
		p.pos++

		value, err := p.readValue(entry.Key)
		if err != nil {
			return entry, err
		}
		entry.Fields[name] = DecodeLaTeX(value)
	}
}

// readValue parses a field value: one or more braced, quoted, or bare
// pieces joined with #.
func (p *parser) readValue(key string) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return "", p.errorf("truncated value in entry %q", key)
		}
		piece, err := p.readValuePiece(key)
		if err != nil {
			return "", err
		}
		b.WriteString(piece)

		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		return b.String(), nil
	}
}

func (p *parser) readValuePiece(key string) (string, error) {
	switch p.src[p.pos] {
	case '{':
		return p.readBraced(key)
	case '"':
		return p.readQuoted(key)
	default:
		// Bare value: number or string macro, up to , or }.
		start := p.pos
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if c == ',' || c == '}' || c == '#' || unicode.IsSpace(c) {
				break
			}
			p.pos++
		}
		if p.pos == start {
			return "", p.errorf("empty value in entry %q", key)
		}
		return string(p.src[start:p.pos]), nil
	}
}

func (p *parser) readBraced(key string) (string, error) {
	depth := 0
	start := p.pos + 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				value := string(p.src[start:p.pos])
				p.pos++
				return value, nil
			}
		case '\\':
			p.pos++ // escaped character, e.g. \{
		}
	}
	return "", p.errorf("unbalanced braces in entry %q", key)
}

func (p *parser) readQuoted(key string) (string, error) {
	p.pos++ // opening quote
	start := p.pos
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				value := string(p.src[start:p.pos])
				p.pos++
				return value, nil
			}
		case '\\':
			p.pos++
		}
	}
	return "", p.errorf("unterminated quoted value in entry %q", key)
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line := 1
	for i := 0; i < p.pos && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
		}
	}
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}
