package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing timeline layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		watch  bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Compute the layout of a timeline",
		Long: `Compute the layout of a timeline.

The snapshot is read from the given file, or from the configured store for
--owner when no file is given. The output is a layout.json file with the
position, side and role of every moment and the edges between them (the
same format as 'render -f json').

With --watch the layout is recomputed every time the snapshot file changes.

Layouts are cached locally, keyed by snapshot content and layout options.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := inputArg(args)
			opts := c.pipelineOptions(cmd, &flags, input)
			opts.Formats = []string{pipeline.FormatJSON}
			if output == "" {
				output = layoutOutputPath(input, opts.Owner)
			}

			if !watch {
				return c.runLayout(cmd.Context(), input, opts, output, flags.noCache)
			}
			if input == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--watch needs a snapshot file")
			}
			printInfo("Watching %s", input)
			return watchFile(cmd.Context(), input, c.Logger, func() error {
				return c.runLayout(cmd.Context(), input, opts, output, flags.noCache)
			}, func(err error) {
				printError("%s", errors.UserMessage(err))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "recompute when the snapshot file changes")
	flags.register(cmd)

	return cmd
}

// layoutOutputPath derives the default output path from the input file or
// the owner.
func layoutOutputPath(input, owner string) string {
	switch {
	case input != "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	case owner != "":
		return owner + ".layout.json"
	default:
		return "layout.json"
	}
}

// runLayout loads the snapshot, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, input, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := output == "-"
	prog := newProgress(c.Logger)

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()
	}
	res, err := runner.Execute(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Computed layout of %d moments", res.Stats.NodeCount))

	data := res.Artifacts[pipeline.FormatJSON]
	if toStdout {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats.NodeCount, res.Stats.BranchCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	if res.Stats.Unreachable > 0 {
		printWarning("%d moments are not reachable from any branch root", res.Stats.Unreachable)
	}
	printNewline()
	printNextStep("Render", appName+" render -f svg "+inputOrOwner(input, opts.Owner))

	return nil
}

func inputOrOwner(input, owner string) string {
	if input != "" {
		return input
	}
	return "--owner " + owner
}
