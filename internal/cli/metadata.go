package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/entrypoint"
	"github.com/mrlokans/booklibrary/internal/metadata"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "lookup <isbn>",
		Short:   "Look an ISBN up on Open Library",
		Long:    `Fetches metadata for an ISBN from Open Library without changing the library.`,
		Example: `  booklibrary lookup 978-0-441-01359-3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewQuietApp(opts.config())
			if err != nil {
				return err
			}
			defer app.Close()

			md, err := app.OpenLibrary.LookupByISBN(cmd.Context(), args[0])
			if errors.Is(err, metadata.ErrNotFound) {
				return fmt.Errorf("no Open Library record for ISBN %s", args[0])
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(md)
			}
			printMetadata(cmd.OutOrStdout(), md)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the metadata as JSON")

	return cmd
}

func printMetadata(out io.Writer, md *metadata.BookMetadata) {
	fmt.Fprintf(out, "Title:     %s\n", md.Title)
	if len(md.Authors) > 0 {
		fmt.Fprintf(out, "Authors:   %s\n", strings.Join(md.Authors, ", "))
	} else if md.Author != "" {
		fmt.Fprintf(out, "Author:    %s\n", md.Author)
	}
	if md.ISBN != "" {
		fmt.Fprintf(out, "ISBN:      %s\n", md.ISBN)
	}
	if md.Publisher != "" {
		fmt.Fprintf(out, "Publisher: %s\n", md.Publisher)
	}
	if md.PublicationYear > 0 {
		fmt.Fprintf(out, "Year:      %d\n", md.PublicationYear)
	}
	if md.PageCount > 0 {
		fmt.Fprintf(out, "Pages:     %d\n", md.PageCount)
	}
	if md.CoverURL != "" {
		fmt.Fprintf(out, "Cover:     %s\n", md.CoverURL)
	}
}

func newEnrichCmd(opts *globalOptions) *cobra.Command {
	var all bool
	var isbn string

	cmd := &cobra.Command{
		Use:   "enrich [book-id]",
		Short: "Fill missing book metadata from Open Library",
		Long: `Fills the publisher, page count, publication year and cover of a book
when they are missing. Fields that already have a value are never
overwritten. With --all every book with an ISBN and missing metadata is
enriched.`,
		Example: `  booklibrary enrich 42
  booklibrary enrich 42 --isbn 9780441013593
  booklibrary enrich --all`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewQuietApp(opts.config())
			if err != nil {
				return err
			}
			defer app.Close()
			out := cmd.OutOrStdout()

			if all {
				result, err := app.Enricher.EnrichAllMissing(cmd.Context())
				if result != nil {
					fmt.Fprintf(out, "Books checked: %d\n", result.TotalBooks)
					fmt.Fprintf(out, "Enriched: %d, unchanged: %d, failed: %d\n", result.Enriched, result.Skipped, result.Failed)
					for _, msg := range result.Errors {
						fmt.Fprintf(out, "  [ERROR] %s\n", msg)
					}
				}
				app.Audit.LogMetadataEnrich(bulkDescription(result), 0, err)
				return err
			}

			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid book ID %q", args[0])
			}

			var result *metadata.EnrichmentResult
			if isbn != "" {
				result, err = app.Enricher.EnrichBookWithISBN(cmd.Context(), uint(id), isbn)
			} else {
				result, err = app.Enricher.EnrichBook(cmd.Context(), uint(id))
			}
			app.Audit.LogMetadataEnrich(fmt.Sprintf("Enriched book %d from the command line", id), uint(id), err)
			if err != nil {
				return err
			}

			if len(result.FieldsUpdated) == 0 {
				fmt.Fprintf(out, "%q already has all metadata Open Library provides\n", result.Book.Title)
				return nil
			}
			fmt.Fprintf(out, "Updated %q (%s search): %s\n",
				result.Book.Title, result.SearchMethod, strings.Join(result.FieldsUpdated, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Enrich every book with missing metadata")
	cmd.Flags().StringVar(&isbn, "isbn", "", "Look this ISBN up instead of the book's own")

	return cmd
}

func bulkDescription(result *metadata.BulkEnrichmentResult) string {
	if result == nil {
		return "Bulk enrichment from the command line"
	}
	return fmt.Sprintf("Bulk enrichment from the command line: %d enriched, %d failed of %d",
		result.Enriched, result.Failed, result.TotalBooks)
}

func newFixCoversCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-covers",
		Short: "Find covers for books without a working one",
		Long: `Checks books that have no cover or an Open Library cover and replaces
missing or placeholder images with a cover from Google Books or Open
Library.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewQuietApp(opts.config())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Covers.FixCovers(cmd.Context())
			checked, fixed := 0, 0
			if result != nil {
				checked, fixed = result.Checked, result.Fixed
			}
			app.Audit.LogCoverFix(checked, fixed, err)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Checked %d books, fixed %d covers\n", checked, fixed)
			return nil
		},
	}
}
