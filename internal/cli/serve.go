package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/DELAxGithub/wordmiro/internal/api"
	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the wordmiro HTTP API server",
		Long: `Run the wordmiro HTTP API server.

The server exposes the expand and layout pipeline over JSON endpoints. When
store.mongo_uri is set in the config, graphs can also be saved, listed, and
deleted via /api/v1/graphs. Without it those endpoints answer 503.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: "+defaultConfigHint+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the runner, optional Mongo store, and HTTP server, then
// blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, configPath string, noCache bool) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// The expansion service is optional in server mode; without it the
	// expand endpoint reports the configuration error per request.
	var expander pipeline.Expander
	if client, err := newExpander(cfg); err == nil {
		expander = client
	} else {
		logger.Warn("expansion service not configured; /api/v1/expand will fail", "err", err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache, expander)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var graphs api.GraphStore
	if cfg.Store.MongoURI != "" {
		mongo, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer mongo.Close(context.Background())
		graphs = mongo
		logger.Info("graph store enabled", "database", cfg.Store.Database)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(runner, graphs, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
