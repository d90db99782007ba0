package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DELAxGithub/wordmiro/pkg/pipeline"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// layoutCommand creates the layout command for relaxing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Relax a graph's node positions with the force simulation",
		Long: `Relax a graph's node positions with the force simulation.

The layout command takes a graph.json file and recomputes node positions using
a force-directed simulation: connected nodes attract, all nodes repel, and a
cooling schedule settles the graph. Small graphs use exact pairwise forces;
large ones switch to a Barnes-Hut approximation.

By default the input file is updated in place. Results are cached locally so
re-running on an unchanged graph is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, configPath, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: update input in place)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: "+defaultConfigHint+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "force simulation iterations")
	cmd.Flags().Float64Var(&opts.K, "k", 0, "natural edge length")
	cmd.Flags().Float64Var(&opts.Theta, "theta", 0, "Barnes-Hut approximation threshold")

	return cmd
}

// runLayout loads the graph, relaxes the positions, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output, configPath string, noCache bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyConfigDefaults(&opts, cfg)

	g, err := store.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Relaxing layout...")
	spinner.Start()

	strategy, cacheHit, err := runner.ApplyLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := store.ExportJSON(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete (%s)", strategy)
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Render", "wordmiro render "+outputPath)

	return nil
}
