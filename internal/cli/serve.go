package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wyboard/internal/devserver"
	"wyboard/internal/logs"
)

func newServeDevCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-dev",
		Short: "Run an in-memory backend seeded with a demo project",
		Long: `Run an in-memory backend on --addr serving the REST API under /pms.

The demo project has id 1. State is lost when the server stops. When a
token is configured, requests must carry it as a bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := devserver.New(devserver.NewDemo(), a.cfg.Token, logs.Logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving demo project %d on %s%s\n", devserver.DemoProjectID, addr, devserver.BasePath)
			return devserver.Serve(cmd.Context(), e, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
