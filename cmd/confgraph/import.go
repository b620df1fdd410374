package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avila/confgraph/internal/catalog"
	"github.com/avila/confgraph/internal/dblp"
	"github.com/avila/confgraph/internal/pipeline"
)

var (
	importFrom     int
	importTo       int
	importDirs     []string
	importNoLookup bool
)

func init() {
	importCmd.Flags().IntVar(&importFrom, "from", 0, "Only import editions from this year on (inclusive)")
	importCmd.Flags().IntVar(&importTo, "to", 0, "Only import editions up to this year (inclusive)")
	importCmd.Flags().StringArrayVar(&importDirs, "dir", nil, "Directory to scan for .bib files (repeatable, overrides config)")
	importCmd.Flags().BoolVar(&importNoLookup, "no-lookup", false, "Skip DBLP author reconciliation, keep names as exported")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import BibTeX files into the catalog",
	Long: `Import every .bib file from the configured directories.

Records without a DOI are skipped. When --from and --to are given,
records outside that edition-year window are skipped too. Each run is
one transaction: any storage error rolls the whole run back.

Usage:
  confgraph import
  confgraph import --from 2015 --to 2024
  confgraph import --dir proceedings --no-lookup`,
	Args: cobra.NoArgs,
	RunE: runImportBib,
}

// validateWindow checks the --from/--to pair. Both zero means no
// window at all.
func validateWindow(from, to int) error {
	if (from == 0) != (to == 0) {
		return fmt.Errorf("--from and --to must be given together")
	}
	if from < 0 || to < 0 {
		return fmt.Errorf("years must be positive")
	}
	if from > to {
		return fmt.Errorf("--from %d is after --to %d", from, to)
	}
	return nil
}

func runImportBib(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()
	defer logger.Sync()

	if err := validateWindow(importFrom, importTo); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	dirs := cfg.BibDirs
	if len(importDirs) > 0 {
		dirs = importDirs
	}

	for _, dir := range dirs {
		removed, err := pipeline.CleanScratchDirs(dir)
		if err != nil {
			exitWithError(ExitError, "cleaning scratch directories: %v", err)
		}
		if removed > 0 {
			logger.Info("removed scratch directories", zap.String("dir", dir), zap.Int("count", removed))
		}
	}

	db, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	var authority pipeline.Authority
	if !importNoLookup {
		opts := []dblp.ClientOption{
			dblp.WithRateLimit(cfg.DBLP.RateLimit),
			dblp.WithHitLimit(cfg.DBLP.HitLimit),
			dblp.WithLogger(logger),
		}
		if cfg.DBLP.BaseURL != "" {
			opts = append(opts, dblp.WithBaseURL(cfg.DBLP.BaseURL))
		}
		authority = dblp.NewClient(opts...)
	}

	p := pipeline.New(db, authority, logger, pipeline.Options{
		YearStart:           importFrom,
		YearEnd:             importTo,
		LookupTimeout:       cfg.LookupTimeout(),
		SimilarityThreshold: cfg.SimilarityThreshold,
	})

	res, err := p.Run(cmd.Context(), dirs)
	if err != nil {
		if catalog.IsConflict(err) {
			exitWithError(ExitDataError, "import aborted, nothing written: %v", err)
		}
		exitWithError(ExitError, "import aborted, nothing written: %v", err)
	}

	if humanOutput {
		outputHuman("Imported %d new papers from %d files (%d records)\n", res.InsertedPapers, res.Files, res.Records)
		outputHuman("Skipped: %d without DOI, %d outside year window\n", res.SkippedNoDOI, res.SkippedOutOfWindow)
		if res.FailedFiles > 0 {
			outputHuman("Failed to parse %d files (see log)\n", res.FailedFiles)
		}
		return nil
	}
	return outputJSON(res)
}
