// Package bibtex parses BibTeX bibliography files into structured entries.
package bibtex

import "strings"

// Entry represents a single BibTeX entry.
type Entry struct {
	// Type is the entry type (inproceedings, article, ...), lowercased.
	Type string
	// Key is the citation key.
	Key string
	// Fields maps lowercased field names to their decoded values.
	Fields map[string]string
}

// Field returns the trimmed value of a field, or "" if absent.
func (e *Entry) Field(name string) string {
	return strings.TrimSpace(e.Fields[strings.ToLower(name)])
}

// DOI returns the entry's DOI normalized for comparison: resolver URL
// prefixes and "doi:" labels stripped, lowercased. Empty if the entry
// has no doi field.
func (e *Entry) DOI() string {
	doi := e.Field("doi")
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}
