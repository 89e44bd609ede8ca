package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/importers"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file.csv>",
		Short: "Propose a column mapping for a CSV export",
		Long: `Reads the header row of a CSV export and prints the detected column
mapping as YAML. The output can be edited and passed to
"booklibrary import --mapping".`,
		Example: `  booklibrary detect export.csv > mapping.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
}

func runDetect(out, errOut io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}

	headers, err := importers.PreviewHeaders(string(data))
	if err != nil {
		return err
	}

	detection := importers.AutoDetectColumns(headers)
	yamlData, err := importers.MarshalMapping(detection.Mapping)
	if err != nil {
		return err
	}
	if _, err := out.Write(yamlData); err != nil {
		return err
	}

	// Diagnostics go to stderr so stdout stays a valid mapping file.
	fmt.Fprintf(errOut, "Matched %d of %d columns\n", detection.Matched, len(headers))
	if len(detection.MissingRequired) > 0 {
		missing := make([]string, len(detection.MissingRequired))
		for i, f := range detection.MissingRequired {
			missing[i] = string(f)
		}
		fmt.Fprintf(errOut, "WARNING: no column found for required fields: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
