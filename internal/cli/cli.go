package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/DELAxGithub/wordmiro/pkg/buildinfo"
	"github.com/DELAxGithub/wordmiro/pkg/cache"
	"github.com/DELAxGithub/wordmiro/pkg/config"
	"github.com/DELAxGithub/wordmiro/pkg/errors"
	"github.com/DELAxGithub/wordmiro/pkg/expand"
	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wordmiro"

	// apiKeyEnv names the environment variable holding the expansion
	// service bearer token.
	apiKeyEnv = "WORDMIRO_API_KEY"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "wordmiro",
		Short:        "Wordmiro grows and lays out vocabulary graphs",
		Long:         `Wordmiro is a CLI tool for building vocabulary note graphs: expand a term into its related words, relax the graph with a force-directed layout, and render the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Attach the logger so commands can recover it from their context.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The expander may be nil
// for commands that never call the expansion service (layout, render).
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool, expander pipeline.Expander) (*pipeline.Runner, error) {
	cache, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, expander, c.Logger), nil
}

// newExpander builds the expansion service client from config. The service
// base URL is required; everything else has defaults.
func newExpander(cfg config.Config) (*expand.Client, error) {
	if cfg.Service.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"no expansion service configured; set service.base_url in %s", config.DefaultPath())
	}
	return expand.NewClient(expand.Options{
		BaseURL:    cfg.Service.BaseURL,
		Model:      cfg.Service.Model,
		MaxRelated: cfg.Service.MaxRelated,
		APIKey:     os.Getenv(apiKeyEnv),
	})
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wordmiro/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the config file, falling back to the default path.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// applyConfigDefaults fills pipeline options the flags left unset from the
// loaded config. Explicit flags always win.
func applyConfigDefaults(opts *pipeline.Options, cfg config.Config) {
	if opts.Width == 0 {
		opts.Width = cfg.Canvas.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.Canvas.Height
	}
	if opts.Iterations == 0 {
		opts.Iterations = cfg.Layout.Iterations
	}
	if opts.K == 0 {
		opts.K = cfg.Layout.K
	}
	if opts.Theta == 0 {
		opts.Theta = cfg.Layout.Theta
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
