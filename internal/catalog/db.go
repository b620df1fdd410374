// Package catalog is the relational store of conferences, editions,
// papers and authors built up by the import pipeline.
package catalog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the catalog's SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the catalog database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Begin starts the single write transaction an import run owns. All
// upserts go through the returned ImportTx; nothing is visible to
// readers until Commit.
func (d *DB) Begin() (*ImportTx, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &ImportTx{tx: tx}, nil
}

// createSchema creates the catalog schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS editorials (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS conferences (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			location TEXT,
			editorial_id INTEGER NOT NULL REFERENCES editorials(id)
		);

		-- One edition per conference per year
		CREATE TABLE IF NOT EXISTS conference_editions (
			id INTEGER PRIMARY KEY,
			conference_id INTEGER NOT NULL REFERENCES conferences(id),
			year INTEGER,
			booktitle TEXT,
			UNIQUE (conference_id, year)
		);

		CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY,
			edition_id INTEGER NOT NULL REFERENCES conference_editions(id),
			authors TEXT,
			title TEXT,
			pages TEXT,
			publisher TEXT,
			abstract TEXT,
			doi TEXT NOT NULL UNIQUE,
			url TEXT,
			isbn TEXT,
			keywords TEXT
		);

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY,
			full_name TEXT NOT NULL UNIQUE,
			publication_count INTEGER NOT NULL DEFAULT 0,
			first_publication_year INTEGER,
			last_publication_year INTEGER,
			most_common_conference TEXT
		);

		CREATE TABLE IF NOT EXISTS paper_authors (
			paper_id INTEGER NOT NULL REFERENCES papers(id),
			author_id INTEGER NOT NULL REFERENCES authors(id),
			PRIMARY KEY (paper_id, author_id)
		);

		CREATE INDEX IF NOT EXISTS idx_papers_edition ON papers(edition_id);
		CREATE INDEX IF NOT EXISTS idx_editions_conference ON conference_editions(conference_id);
		CREATE INDEX IF NOT EXISTS idx_paper_authors_author ON paper_authors(author_id);
	`
	_, err := db.Exec(schema)
	return err
}
