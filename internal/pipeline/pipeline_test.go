package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avila/confgraph/internal/catalog"
)

const sampleBib = `@inproceedings{smith2020,
  author    = {Smith, Jon and Garc{\'\i}a, Mar{\'\i}a},
  title     = {Adaptive Load Shedding},
  booktitle = {Proceedings of the 11th Conference on Performance Engineering},
  series    = {ICPE '20},
  location  = {Edmonton, Canada},
  publisher = {ACM},
  year      = {2020},
  doi       = {10.1145/1122445.1122456},
  keywords  = {load shedding, benchmarking},
}

@inproceedings{nodoi2020,
  author    = {Nobody, Jane},
  title     = {A Paper Without Identifier},
  series    = {ICPE '20},
  year      = {2020},
}

@inproceedings{zhang2015,
  author    = {Zhang, Wei},
  title     = {Old Results},
  series    = {ICPE '15},
  year      = {2015},
  doi       = {10.1145/999.888},
}
`

// fakeAuthority records lookups and answers from a canned table.
type fakeAuthority struct {
	answers map[string][]string
	err     error
	calls   int
}

func (f *fakeAuthority) CandidateAuthors(_ context.Context, title string, _ int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[title], nil
}

func newTestPipeline(t *testing.T, authority Authority, opts Options) (*Pipeline, *catalog.DB) {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, authority, nil, opts), db
}

func writeBib(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestRunCounters(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Options{YearStart: 2018, YearEnd: 2022})
	dir := t.TempDir()
	writeBib(t, dir, "sample.bib", sampleBib)

	res, err := p.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.InsertedPapers != 1 {
		t.Errorf("InsertedPapers = %d, want 1", res.InsertedPapers)
	}
	if res.SkippedNoDOI != 1 {
		t.Errorf("SkippedNoDOI = %d, want 1", res.SkippedNoDOI)
	}
	if res.SkippedOutOfWindow != 1 {
		t.Errorf("SkippedOutOfWindow = %d, want 1", res.SkippedOutOfWindow)
	}
	if res.Records != 3 {
		t.Errorf("Records = %d, want 3", res.Records)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	p, db := newTestPipeline(t, nil, Options{})
	dir := t.TempDir()
	writeBib(t, dir, "sample.bib", sampleBib)

	first, err := p.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.InsertedPapers != 2 {
		t.Fatalf("first run InsertedPapers = %d, want 2", first.InsertedPapers)
	}

	second, err := p.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.InsertedPapers != 0 {
		t.Errorf("second run InsertedPapers = %d, want 0", second.InsertedPapers)
	}

	// Aggregates must not advance when the paper was already known.
	a, err := db.GetAuthor("Jon Smith")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if a == nil {
		t.Fatal("author Jon Smith not found after import")
	}
	if a.PublicationCount != 1 {
		t.Errorf("PublicationCount = %d, want 1 after re-import", a.PublicationCount)
	}
}

func TestRunResolvesAgainstAuthority(t *testing.T) {
	authority := &fakeAuthority{answers: map[string][]string{
		"Adaptive Load Shedding": {"Jonathan Smith", "María García"},
	}}
	p, db := newTestPipeline(t, authority, Options{})
	dir := t.TempDir()
	writeBib(t, dir, "sample.bib", sampleBib)

	if _, err := p.Run(context.Background(), []string{dir}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if authority.calls == 0 {
		t.Fatal("authority was never consulted")
	}

	a, err := db.GetAuthor("Jonathan Smith")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if a == nil {
		t.Error("expected local name to be replaced by the authority's Jonathan Smith")
	}
	if local, _ := db.GetAuthor("Jon Smith"); local != nil {
		t.Error("local spelling Jon Smith stored despite accepted substitution")
	}
}

func TestRunAuthorityErrorKeepsLocalNames(t *testing.T) {
	authority := &fakeAuthority{err: errors.New("boom")}
	p, db := newTestPipeline(t, authority, Options{})
	dir := t.TempDir()
	writeBib(t, dir, "sample.bib", sampleBib)

	res, err := p.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.InsertedPapers != 2 {
		t.Errorf("InsertedPapers = %d, want 2", res.InsertedPapers)
	}
	if a, _ := db.GetAuthor("Jon Smith"); a == nil {
		t.Error("local name missing after authority failure")
	}
}

func TestRunSkipsUnparseableFile(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Options{})
	dir := t.TempDir()
	writeBib(t, dir, "good.bib", sampleBib)
	writeBib(t, dir, "bad.bib", "@inproceedings{broken, author = {unterminated")

	res, err := p.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FailedFiles != 1 {
		t.Errorf("FailedFiles = %d, want 1", res.FailedFiles)
	}
	if res.InsertedPapers != 2 {
		t.Errorf("InsertedPapers = %d, want 2", res.InsertedPapers)
	}
}

func TestRunMissingDirFails(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Options{})
	if _, err := p.Run(context.Background(), []string{filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	p, _ := newTestPipeline(t, nil, Options{LookupTimeout: time.Second})
	dir := t.TempDir()
	writeBib(t, dir, "sample.bib", sampleBib)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, []string{dir}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestCleanScratchDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"downloaded_files", "downloaded_files_2", "keep"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeBib(t, filepath.Join(root, "downloaded_files"), "junk.bib", "")

	removed, err := CleanScratchDirs(root)
	if err != nil {
		t.Fatalf("CleanScratchDirs: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := os.Stat(filepath.Join(root, "keep")); err != nil {
		t.Errorf("keep directory should survive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "downloaded_files")); !os.IsNotExist(err) {
		t.Error("downloaded_files should be gone")
	}
}
