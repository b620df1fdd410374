package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/avila/confgraph/internal/catalog"
)

var (
	statsFrom      int
	statsTo        int
	statsLimit     int
	statsMinPapers int
)

func init() {
	statsCmd.PersistentFlags().IntVar(&statsFrom, "from", 0, "Window start year (inclusive)")
	statsCmd.PersistentFlags().IntVar(&statsTo, "to", 0, "Window end year (inclusive)")
	statsCmd.PersistentFlags().IntVar(&statsLimit, "limit", 0, "Maximum rows to return (default 20)")
	statsCoauthorsCmd.Flags().IntVar(&statsMinPapers, "min-papers", 2, "Only pairs with at least this many shared papers")

	statsCmd.AddCommand(statsAuthorsCmd)
	statsCmd.AddCommand(statsConferenceCmd)
	statsCmd.AddCommand(statsKeywordsCmd)
	statsCmd.AddCommand(statsEvolutionCmd)
	statsCmd.AddCommand(statsCoauthorsCmd)
	statsCmd.AddCommand(statsYearsCmd)
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Query the catalog",
	Long: `Query the imported catalog.

All subcommands accept --from/--to to restrict the edition-year window
and --limit to cap the row count.`,
}

// openCatalog opens the configured database for read queries.
func openCatalog() *catalog.DB {
	cfg := loadConfig()
	db, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	return db
}

var statsAuthorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Rank authors by number of papers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		ranks, err := db.TopAuthors(statsFrom, statsTo, statsLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for i, r := range ranks {
				outputHuman("%2d. %s (%d papers)\n", i+1, r.FullName, r.Papers)
			}
			return nil
		}
		return outputJSON(ranks)
	},
}

var statsConferenceCmd = &cobra.Command{
	Use:   "conference <name>",
	Short: "Rank authors within one conference series",
	Long: `Rank authors within one conference series.

The name matches the stored series exactly or as a prefix, so
"ICPE" covers "ICPE '19", "ICPE '20" and so on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		ranks, err := db.TopAuthorsForConference(args[0], statsFrom, statsTo, statsLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for i, r := range ranks {
				outputHuman("%2d. %s (%d papers)\n", i+1, r.FullName, r.Papers)
			}
			return nil
		}
		return outputJSON(ranks)
	},
}

var statsKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Rank paper keywords by frequency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		counts, err := db.TopKeywords(statsFrom, statsTo, statsLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for i, k := range counts {
				outputHuman("%2d. %s (%d)\n", i+1, k.Keyword, k.Count)
			}
			return nil
		}
		return outputJSON(counts)
	},
}

var statsEvolutionCmd = &cobra.Command{
	Use:   "evolution <author>",
	Short: "Papers per year for one author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		author, err := db.GetAuthor(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if author == nil {
			exitWithError(ExitDataError, "unknown author: %s", args[0])
		}

		counts, err := db.AuthorEvolution(args[0], statsFrom, statsTo)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s (%d papers", author.FullName, author.PublicationCount)
			if author.MostCommonConference != "" {
				outputHuman(", mostly at %s", author.MostCommonConference)
			}
			outputHuman(")\n")
			for _, c := range counts {
				outputHuman("  %d: %s (%d)\n", c.Year, strings.Repeat("#", c.Papers), c.Papers)
			}
			return nil
		}
		return outputJSON(struct {
			Author *catalog.Author     `json:"author"`
			Years  []catalog.YearCount `json:"years"`
		}{author, counts})
	},
}

var statsCoauthorsCmd = &cobra.Command{
	Use:   "coauthors",
	Short: "Rank co-author pairs by shared papers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		pairs, err := db.TopCoauthorPairs(statsFrom, statsTo, statsLimit, statsMinPapers)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for i, p := range pairs {
				outputHuman("%2d. %s + %s (%d papers)\n", i+1, p.AuthorA, p.AuthorB, p.Papers)
			}
			return nil
		}
		return outputJSON(pairs)
	},
}

var statsYearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Show the edition-year range covered by the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openCatalog()
		defer db.Close()

		min, max, err := db.YearBounds()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			if min == 0 {
				outputHuman("Catalog has no dated editions\n")
			} else {
				outputHuman("Editions span %d to %d\n", min, max)
			}
			return nil
		}
		return outputJSON(struct {
			Min int `json:"min"`
			Max int `json:"max"`
		}{min, max})
	},
}
