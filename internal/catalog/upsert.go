package catalog

import (
	"database/sql"
	"fmt"
)

// ImportTx is the write transaction owned by one import run. Every
// operation follows the same find-or-create pattern: look up by natural
// key, insert only when absent, return the row id either way. The
// single-writer model makes select-then-insert safe; the UNIQUE
// constraints remain as a backstop and surface as ConflictError.
type ImportTx struct {
	tx *sql.Tx
}

// Commit commits the run's transaction.
func (t *ImportTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// Rollback discards the run's work. Safe to call after Commit.
func (t *ImportTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

// FindOrCreateEditorial returns the id of the editorial with the given
// name, creating it on first sight. The empty string is a valid,
// poolable name: many records carry no publisher.
func (t *ImportTx) FindOrCreateEditorial(name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM editorials WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up editorial %q: %w", name, err)
	}

	res, err := t.tx.Exec(`INSERT INTO editorials (name) VALUES (?)`, name)
	if err != nil {
		return 0, wrapInsertErr("editorials", name, err)
	}
	return res.LastInsertId()
}

// FindOrCreateConference returns the id of the conference series with
// the given name. Location and editorial are fixed at creation time;
// conflicting values on later sightings are ignored.
func (t *ImportTx) FindOrCreateConference(name, location string, editorialID int64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM conferences WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up conference %q: %w", name, err)
	}

	res, err := t.tx.Exec(
		`INSERT INTO conferences (name, location, editorial_id) VALUES (?, ?, ?)`,
		name, location, editorialID)
	if err != nil {
		return 0, wrapInsertErr("conferences", name, err)
	}
	return res.LastInsertId()
}

// FindOrCreateEdition returns the id of the (conference, year) edition.
// Year may be nil for records without one; the booktitle is fixed at
// first creation.
func (t *ImportTx) FindOrCreateEdition(conferenceID int64, year *int, booktitle string) (int64, error) {
	var id int64
	// IS compares NULL-safe, so nil years find their own edition row.
	err := t.tx.QueryRow(
		`SELECT id FROM conference_editions WHERE conference_id = ? AND year IS ?`,
		conferenceID, nullableYear(year)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up edition (conference %d, year %v): %w", conferenceID, year, err)
	}

	res, err := t.tx.Exec(
		`INSERT INTO conference_editions (conference_id, year, booktitle) VALUES (?, ?, ?)`,
		conferenceID, nullableYear(year), booktitle)
	if err != nil {
		return 0, wrapInsertErr("conference_editions", fmt.Sprintf("conference %d, year %v", conferenceID, year), err)
	}
	return res.LastInsertId()
}

// Paper carries the fields persisted for one paper record.
type Paper struct {
	EditionID int64
	DOI       string
	Authors   string // denormalized display string
	Title     string
	Pages     string
	Publisher string
	Abstract  string
	URL       string
	ISBN      string
	Keywords  string
}

// FindOrCreatePaper deduplicates on DOI. An existing row keeps its
// first-seen field values untouched and reports created=false; only a
// newly inserted paper may advance author aggregates downstream.
func (t *ImportTx) FindOrCreatePaper(p Paper) (id int64, created bool, err error) {
	err = t.tx.QueryRow(`SELECT id FROM papers WHERE doi = ?`, p.DOI).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("looking up paper doi %q: %w", p.DOI, err)
	}

	res, err := t.tx.Exec(`
		INSERT INTO papers (edition_id, authors, title, pages, publisher, abstract, doi, url, isbn, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.EditionID, p.Authors, p.Title, p.Pages, p.Publisher, p.Abstract, p.DOI, p.URL, p.ISBN, p.Keywords)
	if err != nil {
		return 0, false, wrapInsertErr("papers", p.DOI, err)
	}
	id, err = res.LastInsertId()
	return id, true, err
}

// RecordAuthorship upserts one resolved author for a paper, maintains
// the author's aggregates, links the pair, and recomputes the author's
// most common conference from the full link graph.
//
// Aggregates (publication count, year bounds) only advance when the
// paper was newly inserted: re-processing a known paper must not
// double-count its authors. The link insert is idempotent either way.
func (t *ImportTx) RecordAuthorship(fullName string, paperID int64, year *int, paperIsNew bool) error {
	var (
		id          int64
		pubCount    int
		first, last sql.NullInt64
	)
	err := t.tx.QueryRow(`
		SELECT id, publication_count, first_publication_year, last_publication_year
		FROM authors WHERE full_name = ?`, fullName).
		Scan(&id, &pubCount, &first, &last)

	switch {
	case err == sql.ErrNoRows:
		res, insErr := t.tx.Exec(`
			INSERT INTO authors (full_name, publication_count, first_publication_year, last_publication_year)
			VALUES (?, 1, ?, ?)`,
			fullName, nullableYear(year), nullableYear(year))
		if insErr != nil {
			return wrapInsertErr("authors", fullName, insErr)
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

	case err != nil:
		return fmt.Errorf("looking up author %q: %w", fullName, err)

	case paperIsNew:
		pubCount++
		if year != nil {
			y := int64(*year)
			if !first.Valid || y < first.Int64 {
				first = sql.NullInt64{Int64: y, Valid: true}
			}
			if !last.Valid || y > last.Int64 {
				last = sql.NullInt64{Int64: y, Valid: true}
			}
		}
		if _, err := t.tx.Exec(`
			UPDATE authors
			SET publication_count = ?, first_publication_year = ?, last_publication_year = ?
			WHERE id = ?`, pubCount, first, last, id); err != nil {
			return fmt.Errorf("updating aggregates for author %q: %w", fullName, err)
		}
	}

	if _, err := t.tx.Exec(
		`INSERT OR IGNORE INTO paper_authors (paper_id, author_id) VALUES (?, ?)`,
		paperID, id); err != nil {
		return fmt.Errorf("linking paper %d to author %q: %w", paperID, fullName, err)
	}

	return t.recomputeMostCommonConference(id, fullName)
}

// recomputeMostCommonConference derives the venue with the most linked
// papers for the author. Ties break lexicographically on the venue name
// so repeated runs give a stable answer.
func (t *ImportTx) recomputeMostCommonConference(authorID int64, fullName string) error {
	var venue string
	err := t.tx.QueryRow(`
		SELECT c.name
		FROM paper_authors pa
		JOIN papers p ON pa.paper_id = p.id
		JOIN conference_editions ce ON p.edition_id = ce.id
		JOIN conferences c ON ce.conference_id = c.id
		WHERE pa.author_id = ?
		GROUP BY c.name
		ORDER BY COUNT(*) DESC, c.name ASC
		LIMIT 1`, authorID).Scan(&venue)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ranking conferences for author %q: %w", fullName, err)
	}

	if _, err := t.tx.Exec(
		`UPDATE authors SET most_common_conference = ? WHERE id = ?`, venue, authorID); err != nil {
		return fmt.Errorf("updating most common conference for author %q: %w", fullName, err)
	}
	return nil
}

// nullableYear converts an optional year to its SQL representation.
func nullableYear(year *int) sql.NullInt64 {
	if year == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*year), Valid: true}
}
