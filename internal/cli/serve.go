package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/booklibrary/internal/entrypoint"
)

func newServeCmd(opts *globalOptions, version string) *cobra.Command {
	var port int32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the library API server",
		Long: `Starts the JSON API on $HOST:$PORT (default 0.0.0.0:8188).

Background tasks and the maintenance schedule run inside the server
process. Ctrl+C stops the server gracefully.`,
		Example: `  # Start with defaults
  booklibrary serve

  # Use another database and port
  booklibrary serve --db ./books.db --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}
			return entrypoint.Run(cmd.Context(), cfg, version)
		},
	}

	cmd.Flags().Int32VarP(&port, "port", "p", 8188, "Port to listen on (overrides $PORT)")

	return cmd
}
