package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sbomlens/internal/server"
	"github.com/matzehuels/sbomlens/pkg/store"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Upload an SBOM with POST /api/upload (multipart field "sbom") and query the
analysis under /api. The server keeps only the most recent analysis in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.settings().Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, closeRunner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	logger := loggerFromContext(ctx)
	srv := server.New(store.New(), runner, c.settings().PipelineOptions(), logger)
	printInfo("Serving on %s", addr)
	return srv.Run(ctx, addr)
}
