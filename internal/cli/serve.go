package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the deployment HTTP API",
		Long: `Serve exposes the composition pipeline over HTTP: POST /api/deploy runs
one pipeline invocation per request, GET /api/templates lists the catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.APIServer.Run(ctx)
		},
	}
}
