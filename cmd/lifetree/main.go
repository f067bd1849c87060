package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/internal/cli"
	lterrors "github.com/lifetree/lifetree/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The root pre-run loads the config, which sets the level; --verbose wins.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if loadConfig != nil {
			if err := loadConfig(cmd, args); err != nil {
				return err
			}
		}
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}
	root.SilenceErrors = true

	return root.ExecuteContext(ctx)
}

// exitCode is 2 for bad input or config, 3 for a malformed timeline and 1
// otherwise.
func exitCode(err error) int {
	switch {
	case lterrors.IsStructural(err):
		return 3
	case lterrors.Is(err, lterrors.ErrCodeInvalidInput),
		lterrors.Is(err, lterrors.ErrCodeInvalidConfig),
		lterrors.Is(err, lterrors.ErrCodeInvalidFormat):
		return 2
	default:
		return 1
	}
}
