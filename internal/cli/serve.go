package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/internal/server"
	"github.com/lifetree/lifetree/pkg/auth"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		refreshWindow time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve timeline layouts over HTTP",
		Long: `Serve timeline layouts over HTTP.

Requests are authenticated with bearer tokens signed with server.jwt_secret
(LIFETREE_JWT_SECRET). Timelines are read from the configured store and
layouts are cached in the configured cache.

Routes:
  GET  /health
  POST /api/v1/auth/refresh
  GET  /api/v1/timeline
  GET  /api/v1/timeline/layout
  GET  /api/v1/timeline/layout.svg
  GET  /api/v1/timeline/nodes/{id}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cfg.JWTSecret == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "server.jwt_secret is required (or set LIFETREE_JWT_SECRET)")
			}
			issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL.Duration)
			if err != nil {
				return err
			}
			validator, err := auth.NewValidator(cfg.JWTSecret)
			if err != nil {
				return err
			}

			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetStoreHooks(hooks)
			defer observability.Reset()

			runner, err := c.newRunner(ctx, "", false)
			if err != nil {
				return err
			}
			defer runner.Close()

			if addr == "" {
				addr = cfg.Addr
			}
			srv := &server.Server{
				Runner:         runner,
				Validator:      validator,
				Issuer:         issuer,
				Logger:         c.Logger,
				Defaults:       c.baseOptions(),
				AllowedOrigins: cfg.AllowedOrigins,
				RefreshWindow:  refreshWindow,
			}
			printInfo("Serving %s store on %s", c.Config.Store.Kind, addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().DurationVar(&refreshWindow, "refresh-window", auth.DefaultRefreshWindow, "how long after expiry a token can be refreshed")

	return cmd
}
