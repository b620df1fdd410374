package catalog

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Queries below are read-only and run outside any import transaction.
// They depend on the invariants the pipeline guarantees: unique DOIs,
// unique author identities, consistent aggregates.

// AuthorRank is one row of an author ranking.
type AuthorRank struct {
	FullName string `json:"full_name"`
	Papers   int    `json:"papers"`
}

// Author is the stored author row with its derived aggregates.
type Author struct {
	ID                   int64  `json:"id"`
	FullName             string `json:"full_name"`
	PublicationCount     int    `json:"publication_count"`
	FirstPublicationYear *int   `json:"first_publication_year"`
	LastPublicationYear  *int   `json:"last_publication_year"`
	MostCommonConference string `json:"most_common_conference,omitempty"`
}

// GetAuthor looks up an author by full name. Returns nil when absent.
func (d *DB) GetAuthor(fullName string) (*Author, error) {
	var (
		a           Author
		first, last sql.NullInt64
		venue       sql.NullString
	)
	err := d.db.QueryRow(`
		SELECT id, full_name, publication_count, first_publication_year, last_publication_year, most_common_conference
		FROM authors WHERE full_name = ?`, fullName).
		Scan(&a.ID, &a.FullName, &a.PublicationCount, &first, &last, &venue)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up author %q: %w", fullName, err)
	}
	if first.Valid {
		y := int(first.Int64)
		a.FirstPublicationYear = &y
	}
	if last.Valid {
		y := int(last.Int64)
		a.LastPublicationYear = &y
	}
	a.MostCommonConference = venue.String
	return &a, nil
}

// TopAuthors ranks authors by linked papers, optionally windowed by
// edition year. Zero bounds mean unbounded.
func (d *DB) TopAuthors(yearStart, yearEnd, limit int) ([]AuthorRank, error) {
	query := `
		SELECT a.full_name, COUNT(p.id) AS total
		FROM authors a
		JOIN paper_authors pa ON a.id = pa.author_id
		JOIN papers p ON pa.paper_id = p.id
		JOIN conference_editions ce ON p.edition_id = ce.id`
	where, params := yearWindow(yearStart, yearEnd, nil)
	query += where + `
		GROUP BY a.full_name
		ORDER BY total DESC, a.full_name ASC
		LIMIT ?`
	params = append(params, limitOrDefault(limit))

	return d.queryRanks(query, params...)
}

// TopAuthorsForConference ranks authors within one conference series.
// The series is matched by name prefix, the way edition names embed the
// series acronym ("CSS '20" under series "CSS").
func (d *DB) TopAuthorsForConference(conference string, yearStart, yearEnd, limit int) ([]AuthorRank, error) {
	query := `
		SELECT a.full_name, COUNT(p.id) AS total
		FROM authors a
		JOIN paper_authors pa ON a.id = pa.author_id
		JOIN papers p ON pa.paper_id = p.id
		JOIN conference_editions ce ON p.edition_id = ce.id
		JOIN conferences c ON ce.conference_id = c.id
		WHERE (c.name = ? OR c.name LIKE ?)`
	params := []interface{}{conference, conference + " %"}
	where, params := yearWindow(yearStart, yearEnd, params)
	if where != "" {
		query += strings.Replace(where, " WHERE ", " AND ", 1)
	}
	query += `
		GROUP BY a.full_name
		ORDER BY total DESC, a.full_name ASC
		LIMIT ?`
	params = append(params, limitOrDefault(limit))

	return d.queryRanks(query, params...)
}

func (d *DB) queryRanks(query string, params ...interface{}) ([]AuthorRank, error) {
	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying author ranking: %w", err)
	}
	defer rows.Close()

	var ranks []AuthorRank
	for rows.Next() {
		var r AuthorRank
		if err := rows.Scan(&r.FullName, &r.Papers); err != nil {
			return nil, fmt.Errorf("scanning ranking row: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// KeywordCount is one keyword with its frequency over paper keyword
// fields.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TopKeywords tallies the comma- or semicolon-separated keywords of all
// papers, optionally windowed by edition year. Keywords are lowercased
// and trimmed before counting.
func (d *DB) TopKeywords(yearStart, yearEnd, limit int) ([]KeywordCount, error) {
	query := `
		SELECT p.keywords
		FROM papers p
		JOIN conference_editions ce ON p.edition_id = ce.id`
	where, params := yearWindow(yearStart, yearEnd, nil)
	query += where

	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var field sql.NullString
		if err := rows.Scan(&field); err != nil {
			return nil, fmt.Errorf("scanning keywords row: %w", err)
		}
		for _, kw := range splitKeywords(field.String) {
			counts[kw]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ranked := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		ranked = append(ranked, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})
	if n := limitOrDefault(limit); len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// splitKeywords breaks a keyword field on commas and semicolons.
func splitKeywords(field string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// YearCount is one year of an author's publication history.
type YearCount struct {
	Year   int `json:"year"`
	Papers int `json:"papers"`
}

// AuthorEvolution returns per-year paper counts for one author,
// optionally windowed. Years come back ascending.
func (d *DB) AuthorEvolution(fullName string, yearStart, yearEnd int) ([]YearCount, error) {
	query := `
		SELECT ce.year, COUNT(p.id)
		FROM authors a
		JOIN paper_authors pa ON a.id = pa.author_id
		JOIN papers p ON pa.paper_id = p.id
		JOIN conference_editions ce ON p.edition_id = ce.id
		WHERE a.full_name = ? AND ce.year IS NOT NULL`
	params := []interface{}{fullName}
	if yearStart > 0 {
		query += ` AND ce.year >= ?`
		params = append(params, yearStart)
	}
	if yearEnd > 0 {
		query += ` AND ce.year <= ?`
		params = append(params, yearEnd)
	}
	query += `
		GROUP BY ce.year
		ORDER BY ce.year ASC`

	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying evolution for author %q: %w", fullName, err)
	}
	defer rows.Close()

	var out []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Papers); err != nil {
			return nil, fmt.Errorf("scanning evolution row: %w", err)
		}
		out = append(out, yc)
	}
	return out, rows.Err()
}

// CoauthorPair is a pair of authors with their shared paper count.
type CoauthorPair struct {
	AuthorA string `json:"author_a"`
	AuthorB string `json:"author_b"`
	Papers  int    `json:"papers"`
}

// TopCoauthorPairs ranks unordered author pairs by shared papers.
// Pairs below minPapers are dropped.
func (d *DB) TopCoauthorPairs(yearStart, yearEnd, limit, minPapers int) ([]CoauthorPair, error) {
	if minPapers < 1 {
		minPapers = 1
	}
	query := `
		SELECT a1.full_name, a2.full_name, COUNT(DISTINCT pa1.paper_id) AS total
		FROM paper_authors pa1
		JOIN paper_authors pa2 ON pa1.paper_id = pa2.paper_id AND pa1.author_id < pa2.author_id
		JOIN authors a1 ON a1.id = pa1.author_id
		JOIN authors a2 ON a2.id = pa2.author_id
		JOIN papers p ON p.id = pa1.paper_id
		JOIN conference_editions ce ON p.edition_id = ce.id`
	where, params := yearWindow(yearStart, yearEnd, nil)
	query += where + `
		GROUP BY a1.full_name, a2.full_name
		HAVING total >= ?
		ORDER BY total DESC, a1.full_name ASC, a2.full_name ASC
		LIMIT ?`
	params = append(params, minPapers, limitOrDefault(limit))

	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying coauthor pairs: %w", err)
	}
	defer rows.Close()

	var pairs []CoauthorPair
	for rows.Next() {
		var p CoauthorPair
		if err := rows.Scan(&p.AuthorA, &p.AuthorB, &p.Papers); err != nil {
			return nil, fmt.Errorf("scanning coauthor row: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// YearBounds returns the smallest and largest edition years in the
// catalog, or (0, 0) when no edition has a year yet.
func (d *DB) YearBounds() (min, max int, err error) {
	var lo, hi sql.NullInt64
	err = d.db.QueryRow(
		`SELECT MIN(year), MAX(year) FROM conference_editions WHERE year IS NOT NULL`).
		Scan(&lo, &hi)
	if err != nil {
		return 0, 0, fmt.Errorf("querying year bounds: %w", err)
	}
	return int(lo.Int64), int(hi.Int64), nil
}

// yearWindow builds a WHERE clause for an optional edition-year window.
func yearWindow(yearStart, yearEnd int, params []interface{}) (string, []interface{}) {
	var clauses []string
	if yearStart > 0 {
		clauses = append(clauses, "ce.year >= ?")
		params = append(params, yearStart)
	}
	if yearEnd > 0 {
		clauses = append(clauses, "ce.year <= ?")
		params = append(params, yearEnd)
	}
	if len(clauses) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(clauses, " AND "), params
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
