package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcirtapfromspace/chordmap/internal/server"
)

// serveCommand creates the serve command exposing the engine over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

POST /v1/layout accepts a snapshot plus viewport size and responds with one
{id, x, y} position per node. When a Mongo archive is configured, completed
layouts are stored and retrievable via GET /v1/layouts/{id}.

The cache backend (file, redis, none) comes from the config file; redis is
the right choice when running more than one instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, loggerFromContext(ctx))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Serve.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
