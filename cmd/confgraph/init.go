package main

import (
	"github.com/spf13/cobra"

	"github.com/avila/confgraph/internal/catalog"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the catalog database",
	Long: `Create the SQLite catalog database with the full schema.

The path comes from the configuration file (database_path) or the
CONFGRAPH_DB environment variable. Running init against an existing
catalog is harmless: the schema statements are idempotent.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	db, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitError, "creating catalog: %v", err)
	}
	db.Close()

	if humanOutput {
		outputHuman("Catalog ready at %s\n", cfg.DatabasePath)
		return nil
	}
	return outputJSON(StatusResponse{Status: "ok", Path: cfg.DatabasePath})
}
