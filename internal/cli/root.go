// Package cli implements the booklibrary command line.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/config"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	dbPath string
}

// config reads the environment and applies flag overrides on top of it.
func (o *globalOptions) config() *config.Config {
	cfg := config.NewConfig()
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	return cfg
}

// NewRootCmd builds the booklibrary command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "booklibrary",
		Short: "Personal book library with CSV import and reading statistics",
		Long: `booklibrary keeps a personal library of books in SQLite.

It imports reading-tracker CSV exports (Goodreads and similar) with
automatic column detection, computes reading statistics in Book
Equivalents, and fills missing metadata and covers from Open Library
and Google Books.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the library database (default $DATABASE_PATH or "+config.DefaultDatabasePath+")")

	cmd.AddCommand(
		newServeCmd(opts, version),
		newImportCmd(opts),
		newDetectCmd(),
		newStatsCmd(opts),
		newLookupCmd(opts),
		newEnrichCmd(opts),
		newFixCoversCmd(opts),
	)

	return cmd
}
