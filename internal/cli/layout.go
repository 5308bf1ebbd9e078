package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
	"github.com/kcirtapfromspace/chordmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Compute node positions for a collaboration-graph snapshot",
		Long: `Compute node positions for a collaboration-graph snapshot.

The layout command takes a snapshot.json file (nodes and edges, as produced
by the graph-query service) and runs the force-directed simulation to rest.
The output is a layout.json file with one {id, x, y} entry per node, ready
for a rendering layer to use as SVG/canvas coordinates.

Edges referencing unknown node IDs are skipped; an empty snapshot produces
an empty layout. Results are cached locally keyed by snapshot content and
run parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	c.layoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the snapshot, runs the simulation, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	p := newProgress(opts.Logger)
	result, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	p.done("Layout settled")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteLayoutFile(result.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Ticks, result.CacheInfo.LayoutHit)
	if result.RecordID != "" {
		printDetail("Archived as %s", result.RecordID)
	}
	printNewline()
	printNextStep("Watch it settle live", "chordmap watch "+input)

	return nil
}
