package cli

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mapcustomizer/mapcustomizer/internal/server"
	"github.com/mapcustomizer/mapcustomizer/pkg/cache"
	"github.com/mapcustomizer/mapcustomizer/pkg/pipeline"
)

// serveKeyPrefix scopes server cache keys so a Redis instance can be shared.
const serveKeyPrefix = appName + ":"

// serveCommand creates the command that runs the HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Serve renders of the project over HTTP.

  GET  /healthz     liveness probe
  POST /v1/render   body {"labels": [...], "markers": [...]}, returns image/png

Record sets left out of the body are read from the project's record files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			store, err := newCache(ctx, cfg.Cache, noCache)
			if err != nil {
				return err
			}
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), serveKeyPrefix)
			runner := pipeline.NewRunner(store, keyer, c.Logger)
			defer runner.Close()

			printInfo("Serving %s on %s", cfg.BaseImage, cfg.Server.Addr)
			err = server.New(runner, cfg, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, http.ErrServerClosed) {
				printSuccess("Server stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "project file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
