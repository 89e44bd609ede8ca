package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/entrypoint"
	"github.com/mrlokans/booklibrary/internal/importers"
)

type importOptions struct {
	mappingPath     string
	useSavedMapping bool
	saveMapping     bool
	dryRun          bool
	verbose         bool
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	importOpts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import books from a CSV export",
		Long: `Imports books from a reading-tracker CSV export.

Columns are matched to library fields automatically unless a mapping is
given. A mapping file is YAML with one field per line:

  title: Title
  author: Author
  my_rating: My Rating

Rows whose title and author already exist in the library are skipped.`,
		Example: `  # Import a Goodreads export
  booklibrary import goodreads_library_export.csv

  # Preview with an explicit mapping and keep it for next time
  booklibrary import export.csv --mapping mapping.yaml --dry-run
  booklibrary import export.csv --mapping mapping.yaml --save-mapping`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewQuietApp(opts.config())
			if err != nil {
				return err
			}
			defer app.Close()
			return runImport(cmd.Context(), cmd.OutOrStdout(), app.Importer, args[0], importOpts)
		},
	}

	cmd.Flags().StringVarP(&importOpts.mappingPath, "mapping", "m", "", "YAML column mapping (field: header)")
	cmd.Flags().BoolVar(&importOpts.useSavedMapping, "use-saved-mapping", false, "Start from the mapping saved by a previous import")
	cmd.Flags().BoolVar(&importOpts.saveMapping, "save-mapping", false, "Save the mapping used after a successful import")
	cmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "Show what would be imported without making changes")
	cmd.Flags().BoolVarP(&importOpts.verbose, "verbose", "v", false, "List every skipped row")

	return cmd
}

// csvImporter is the part of importers.Service the import command uses.
type csvImporter interface {
	PreviewHeaders(csvText string) ([]string, error)
	AutoDetectColumns(headers []string) importers.Detection
	ImportCSV(ctx context.Context, csvText string, mapping importers.ColumnMapping, source string) (*importers.ImportOutcome, error)
	DryRunCSV(ctx context.Context, csvText string, mapping importers.ColumnMapping) (*importers.ImportOutcome, error)
	SavedMapping() (importers.ColumnMapping, error)
	SaveMapping(mapping importers.ColumnMapping) error
}

func runImport(ctx context.Context, out io.Writer, importer csvImporter, path string, opts *importOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}
	csvText := string(data)

	mapping, err := resolveMapping(importer, csvText, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "CSV Import")
	fmt.Fprintln(out, "==========")
	fmt.Fprintf(out, "File: %s\n", path)
	if opts.dryRun {
		fmt.Fprintln(out, "DRY RUN MODE - No changes will be made")
	}
	fmt.Fprintln(out)

	var outcome *importers.ImportOutcome
	if opts.dryRun {
		outcome, err = importer.DryRunCSV(ctx, csvText, mapping)
	} else {
		outcome, err = importer.ImportCSV(ctx, csvText, mapping, "cli")
	}
	if err != nil {
		return describeImportError(err, outcome)
	}

	printOutcome(out, outcome, opts.verbose)

	if opts.saveMapping && !opts.dryRun {
		if err := importer.SaveMapping(mapping); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nColumn mapping saved")
	}
	return nil
}

// resolveMapping picks the column mapping for an import. An explicit mapping
// file overrides the saved mapping field by field; with neither, columns are
// detected from the CSV header.
func resolveMapping(importer csvImporter, csvText string, opts *importOptions) (importers.ColumnMapping, error) {
	var explicit importers.ColumnMapping
	if opts.mappingPath != "" {
		data, err := os.ReadFile(opts.mappingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping file: %w", err)
		}
		explicit, err = importers.ParseMapping(data)
		if err != nil {
			return nil, err
		}
	}

	if opts.useSavedMapping {
		saved, err := importer.SavedMapping()
		if err != nil {
			return nil, err
		}
		if saved == nil {
			return nil, errors.New("no saved column mapping, run an import with --save-mapping first")
		}
		return saved.Apply(explicit), nil
	}

	if explicit != nil {
		return explicit, nil
	}

	headers, err := importer.PreviewHeaders(csvText)
	if err != nil {
		return nil, err
	}
	return importer.AutoDetectColumns(headers).Mapping, nil
}

func describeImportError(err error, outcome *importers.ImportOutcome) error {
	var parseErr *importers.ParseError
	var validationErr *importers.ValidationError
	switch {
	case errors.As(err, &parseErr):
		return fmt.Errorf("CSV is malformed near line %d: %w", parseErr.Line, err)
	case errors.As(err, &validationErr):
		return fmt.Errorf("column mapping is incomplete: %w", err)
	case outcome != nil:
		return fmt.Errorf("import stopped after %d books: %w", outcome.Imported, err)
	default:
		return err
	}
}

func printOutcome(out io.Writer, outcome *importers.ImportOutcome, verbose bool) {
	fmt.Fprintln(out, "=== Import Summary ===")
	if outcome.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", outcome.RunID)
	}
	fmt.Fprintf(out, "Rows: %d\n", outcome.Total)
	if outcome.DryRun {
		fmt.Fprintf(out, "Would import: %d\n", outcome.Imported)
	} else {
		fmt.Fprintf(out, "Imported: %d\n", outcome.Imported)
	}
	fmt.Fprintf(out, "Skipped: %d (%d duplicates, %d missing required fields)\n",
		len(outcome.Skipped),
		outcome.CountSkipped(importers.SkipReasonDuplicate),
		outcome.CountSkipped(importers.SkipReasonMissingRequired))

	if verbose && len(outcome.Skipped) > 0 {
		fmt.Fprintln(out, "\n=== Skipped Rows ===")
		for _, row := range outcome.Skipped {
			title := row.Title
			if title == "" {
				title = "(no title)"
			}
			fmt.Fprintf(out, "  row %d: %q - %s\n", row.Row, title, row.Reason)
		}
	}
}
