package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		Long: `Serve the tools over HTTP until interrupted.

  GET  /tools          list tools and input schemas
  GET  /tools/NAME     describe one tool
  POST /tools/NAME     invoke a tool with a JSON body
  GET  /openapi.json   OpenAPI description of the tool endpoints
  GET  /healthz        liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, cfg, err := opts.registry(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := opts.logger(cfg, cmd.ErrOrStderr())
			if cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(registry, Version, logger)
			return server.Run(ctx, cfg.Server.Addr, router, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")

	return cmd
}
