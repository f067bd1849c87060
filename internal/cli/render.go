package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/pipeline"
)

// renderCommand creates the render command for writing layout artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		detailed   bool
		nodeSize   float64
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a timeline to JSON, DOT or SVG",
		Long: `Render a timeline to JSON, DOT or SVG.

The snapshot is laid out as in 'layout' and written in every requested
format. SVG is drawn in-process with Graphviz; no Graphviz installation is
needed.

With a single format, -o names the output file. With several formats, -o is
a base path and each file gets the format as its extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			input := inputArg(args)
			opts := c.pipelineOptions(cmd, &flags, input)
			opts.Formats = formats
			opts.Detailed = detailed
			opts.NodeSize = nodeSize
			return c.runRender(cmd.Context(), input, opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatSVG, "output format(s): json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show dates under moment labels")
	cmd.Flags().Float64Var(&nodeSize, "node-size", 0, "moment circle diameter in points (default 18)")
	flags.register(cmd)

	return cmd
}

// basePath derives the base output path. A known format extension on
// output is stripped.
func basePath(output, input, owner string) string {
	if output == "" {
		switch {
		case input != "":
			return strings.TrimSuffix(input, filepath.Ext(input))
		case owner != "":
			return owner
		default:
			return "timeline"
		}
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to.
func outputPaths(output, input, owner string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input, owner)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, input, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(output, input, opts.Owner, opts.Formats)
	written := make([]string, 0, len(paths))
	for format, path := range paths {
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)

	printSuccess("Rendered %d file(s)", len(written))
	for _, p := range written {
		printFile(p)
	}
	printStats(res.Stats.NodeCount, res.Stats.BranchCount, res.Stats.EdgeCount, res.CacheInfo.RenderHit)
	c.Logger.Debug("render timings",
		"load", res.Stats.LoadTime,
		"layout", res.Stats.LayoutTime,
		"render", res.Stats.RenderTime)
	return nil
}
