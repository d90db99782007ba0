package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// expandCommand creates the expand command for growing a graph around a term.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		output     string
		configPath string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "expand <term> [graph.json]",
		Short: "Fetch related terms for a word and merge them into a graph",
		Long: `Fetch related terms for a word and merge them into a graph.

The expand command asks the configured expansion service for words related to
<term> (synonyms, antonyms, associations, etymology, collocations), merges the
results into the graph, and relaxes the layout. New nodes start on a circle
around the expanded term before the force simulation runs.

When a graph.json file is given, the expansion is merged into it; otherwise a
fresh graph is created. Results are cached locally for faster subsequent runs.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 1 {
				input = args[1]
			}
			opts.Term = args[0]
			opts.Formats = parseArtifactFormats(formatsStr)
			return c.runExpand(cmd.Context(), input, opts, output, configPath, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output graph file (default: input file, or <term>.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: "+defaultConfigHint+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and re-query the service")

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "force simulation iterations")
	cmd.Flags().Float64Var(&opts.K, "k", 0, "natural edge length")
	cmd.Flags().BoolVar(&opts.SkipLayout, "skip-layout", false, "keep circular placement, skip the force simulation")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "extra artifact format(s): svg, png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include part of speech and explanations in rendered labels")

	return cmd
}

// defaultConfigHint is shown in flag help; the real default is resolved
// at run time so tests can override the environment.
const defaultConfigHint = "~/.config/wordmiro/config.toml"

// parseArtifactFormats parses the --format flag for expand. The JSON graph
// document is always produced, so it is appended rather than defaulted.
func parseArtifactFormats(s string) []string {
	formats := []string{pipeline.FormatJSON}
	if s == "" {
		return formats
	}
	for _, f := range strings.Split(s, ",") {
		if f != pipeline.FormatJSON {
			formats = append(formats, f)
		}
	}
	return formats
}

// runExpand loads or creates the graph, runs the pipeline, and writes output.
func (c *CLI) runExpand(ctx context.Context, input string, opts pipeline.Options, output, configPath string, noCache bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyConfigDefaults(&opts, cfg)

	expander, err := newExpander(cfg)
	if err != nil {
		return err
	}

	g := graph.New()
	if input != "" {
		if g, err = store.ImportJSON(input); err != nil {
			return fmt.Errorf("load graph %s: %w", input, err)
		}
	}

	runner, err := c.newRunner(ctx, cfg, noCache, expander)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Expanding %q...", opts.Term))
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Expansion failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	graphPath := output
	if graphPath == "" {
		graphPath = input
	}
	if graphPath == "" {
		graphPath = graph.NormalizeLemma(opts.Term) + ".json"
	}

	paths, err := writeArtifacts(result.Artifacts, graphPath)
	if err != nil {
		return err
	}

	printSuccess("Expanded %q: %d new terms", opts.Term, len(result.Added))
	for _, rejected := range result.Rejected {
		printDetail("rejected: %s", rejected)
	}
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.ExpandHit)
	printNewline()
	printNextStep("Browse", "wordmiro browse "+graphPath)

	return nil
}

// writeArtifacts writes each rendered artifact next to the graph file. The
// JSON artifact is the graph document itself and takes the graph path; other
// formats swap the extension.
func writeArtifacts(artifacts map[string][]byte, graphPath string) ([]string, error) {
	base := strings.TrimSuffix(graphPath, filepath.Ext(graphPath))

	var paths []string
	for _, format := range []string{pipeline.FormatJSON, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatDOT} {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if format == pipeline.FormatJSON {
			path = graphPath
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
