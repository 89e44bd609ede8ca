package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/entrypoint"
	"github.com/mrlokans/booklibrary/internal/stats"
)

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print reading statistics",
		Long: `Prints library statistics. Reading volume is measured in Book
Equivalents (BEq): a book's pages divided by the average page count of
read books of the same type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewQuietApp(opts.config())
			if err != nil {
				return err
			}
			defer app.Close()

			snapshot, err := app.Stats.GetStats()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}
			printStats(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the statistics as JSON")

	return cmd
}

func printStats(out io.Writer, s *stats.Snapshot) {
	fmt.Fprintln(out, "=== Library ===")
	fmt.Fprintf(out, "Books: %d (%d read)\n", s.TotalBooks, s.TotalRead)
	fmt.Fprintf(out, "Total BEq: %.2f (traditional %.2f, graphic novels %.2f)\n",
		s.TotalBEq, s.TotalBEqTraditional, s.TotalBEqGraphicNovel)
	fmt.Fprintf(out, "Average pages: traditional %.2f, graphic novels %.2f\n",
		s.AvgPagesTraditional, s.AvgPagesGraphicNovel)
	fmt.Fprintf(out, "Average rating: %.2f\n", s.AvgRating)
	fmt.Fprintf(out, "This year: %d books, %.2f BEq\n", s.BooksThisYear, s.BEqThisYear)

	if len(s.ByYear) > 0 {
		fmt.Fprintln(out, "\n=== By Year ===")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "YEAR\tBOOKS\tBEQ")
		for _, y := range s.ByYear {
			year := "unknown"
			if y.Year != nil {
				year = fmt.Sprintf("%d", *y.Year)
			}
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", year, y.Count, y.BEq)
		}
		w.Flush()
	}

	if len(s.RatingDist) > 0 {
		fmt.Fprintln(out, "\n=== Ratings ===")
		for _, r := range s.RatingDist {
			fmt.Fprintf(out, "%d stars: %d\n", r.Rating, r.Count)
		}
	}

	if len(s.ShelfCounts) > 0 {
		fmt.Fprintln(out, "\n=== Shelves ===")
		for _, sc := range s.ShelfCounts {
			fmt.Fprintf(out, "%s: %d\n", sc.Shelf, sc.Count)
		}
	}
}
