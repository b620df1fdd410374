// Package pipeline drives the BibTeX import: parse, filter, resolve
// author names, and upsert the entity chain into the catalog.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avila/confgraph/internal/bibtex"
	"github.com/avila/confgraph/internal/catalog"
	"github.com/avila/confgraph/internal/names"
)

// DefaultLookupTimeout bounds one external authority lookup. An
// unresponsive authority degrades to "no external hint" instead of
// stalling the batch.
const DefaultLookupTimeout = 60 * time.Second

// Authority is the external name-resolution source. Implementations
// return the canonical author names of the record best matching the
// title (and year, when positive), or an empty slice. The pipeline
// treats errors and empty results identically.
type Authority interface {
	CandidateAuthors(ctx context.Context, title string, year int) ([]string, error)
}

// Options configures one import run.
type Options struct {
	// YearStart and YearEnd bound the inclusive edition-year window.
	// The filter only applies when both are set.
	YearStart int
	YearEnd   int

	// LookupTimeout bounds each authority lookup. Zero means
	// DefaultLookupTimeout.
	LookupTimeout time.Duration

	// SimilarityThreshold overrides the resolver's acceptance
	// threshold when positive.
	SimilarityThreshold float64
}

// Result carries the run counters returned to the caller.
type Result struct {
	Files              int `json:"files"`
	FailedFiles        int `json:"failed_files"`
	Records            int `json:"records"`
	InsertedPapers     int `json:"inserted_papers"`
	SkippedNoDOI       int `json:"skipped_no_doi"`
	SkippedOutOfWindow int `json:"skipped_out_of_window"`
}

// Pipeline imports BibTeX files into the catalog.
type Pipeline struct {
	db        *catalog.DB
	resolver  *names.Resolver
	authority Authority
	log       *zap.Logger
	opts      Options
}

// New creates an import pipeline. authority may be nil, in which case
// every record keeps its locally parsed author names. logger may be
// nil.
func New(db *catalog.DB, authority Authority, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	resolver := names.NewResolver()
	if opts.SimilarityThreshold > 0 {
		resolver.Threshold = opts.SimilarityThreshold
	}
	return &Pipeline{
		db:        db,
		resolver:  resolver,
		authority: authority,
		log:       logger,
		opts:      opts,
	}
}

// Run imports every .bib file under the given directories in one
// transaction. Unparseable files are logged and skipped; storage errors
// are fatal and roll the whole run back, so a retried run starts from
// the prior committed state.
func (p *Pipeline) Run(ctx context.Context, dirs []string) (*Result, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &Result{}
	for _, dir := range dirs {
		if err := p.runDir(ctx, tx, dir, res); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	p.log.Info("import finished",
		zap.Int("files", res.Files),
		zap.Int("inserted_papers", res.InsertedPapers),
		zap.Int("skipped_no_doi", res.SkippedNoDOI),
		zap.Int("skipped_out_of_window", res.SkippedOutOfWindow))
	return res, nil
}

func (p *Pipeline) runDir(ctx context.Context, tx *catalog.ImportTx, dir string, res *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}

	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".bib") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, de.Name())
		records, err := bibtex.ParseFile(path)
		if err != nil {
			// A malformed file skips the file, not the run.
			p.log.Warn("skipping unparseable file", zap.String("path", path), zap.Error(err))
			res.FailedFiles++
			continue
		}
		res.Files++

		for i := range records {
			if err := p.importRecord(ctx, tx, &records[i], res); err != nil {
				return fmt.Errorf("importing %s entry %q: %w", path, records[i].Key, err)
			}
		}
	}
	return nil
}

// importRecord applies one record. The DOI check deliberately precedes
// the year-window check: a record that fails both counts as
// skipped-no-DOI, which is the policy the counters are defined against.
func (p *Pipeline) importRecord(ctx context.Context, tx *catalog.ImportTx, rec *bibtex.Entry, res *Result) error {
	res.Records++

	doi := rec.DOI()
	if doi == "" {
		res.SkippedNoDOI++
		return nil
	}

	year := parseYear(rec.Field("year"))
	if p.opts.YearStart > 0 && p.opts.YearEnd > 0 {
		if year == nil || *year < p.opts.YearStart || *year > p.opts.YearEnd {
			res.SkippedOutOfWindow++
			return nil
		}
	}

	candidates := p.lookupCandidates(ctx, rec.Field("title"), year)
	authors := p.resolver.Resolve(rec.Field("author"), candidates)

	editorialID, err := tx.FindOrCreateEditorial(rec.Field("publisher"))
	if err != nil {
		return err
	}
	conferenceID, err := tx.FindOrCreateConference(rec.Field("series"), rec.Field("location"), editorialID)
	if err != nil {
		return err
	}
	editionID, err := tx.FindOrCreateEdition(conferenceID, year, rec.Field("booktitle"))
	if err != nil {
		return err
	}

	paperID, created, err := tx.FindOrCreatePaper(catalog.Paper{
		EditionID: editionID,
		DOI:       doi,
		Authors:   strings.Join(authors, ", "),
		Title:     rec.Field("title"),
		Pages:     rec.Field("pages"),
		Publisher: rec.Field("publisher"),
		Abstract:  rec.Field("abstract"),
		URL:       rec.Field("url"),
		ISBN:      rec.Field("isbn"),
		Keywords:  rec.Field("keywords"),
	})
	if err != nil {
		return err
	}
	if created {
		res.InsertedPapers++
	}

	for _, name := range authors {
		if err := tx.RecordAuthorship(name, paperID, year, created); err != nil {
			return err
		}
	}
	return nil
}

// lookupCandidates consults the authority, but only when the record has
// a year to gate on. Errors and timeouts degrade to no candidates; a
// flaky authority must never fail a record.
func (p *Pipeline) lookupCandidates(ctx context.Context, title string, year *int) []string {
	if p.authority == nil || year == nil || title == "" {
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, p.opts.LookupTimeout)
	defer cancel()

	candidates, err := p.authority.CandidateAuthors(lctx, title, *year)
	if err != nil {
		p.log.Warn("authority lookup failed, keeping local author names",
			zap.String("title", title), zap.Error(err))
		return nil
	}
	return candidates
}

func parseYear(field string) *int {
	if field == "" {
		return nil
	}
	y, err := strconv.Atoi(field)
	if err != nil {
		return nil
	}
	return &y
}

// CleanScratchDirs removes the downloaded_files* scratch directories
// the upstream scrapers leave behind under root. Returns how many were
// removed.
func CleanScratchDirs(root string) (int, error) {
	var doomed []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), "downloaded_files") {
			doomed = append(doomed, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning for scratch directories: %w", err)
	}

	removed := 0
	for _, dir := range doomed {
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("removing %s: %w", dir, err)
		}
		removed++
	}
	return removed, nil
}
