package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/buildinfo"
	"github.com/lifetree/lifetree/pkg/cache"
	"github.com/lifetree/lifetree/pkg/config"
	"github.com/lifetree/lifetree/pkg/pipeline"
	"github.com/lifetree/lifetree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lifetree"

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Lifetree lays out a personal timeline as a branching tree",
		Long: `Lifetree reads a timeline of moments grouped into branches, computes
the positions of every moment (trunk on one column, side branches on the
other) and renders the result as JSON, Graphviz DOT or SVG.

It can also serve the layout over HTTP to the web frontend.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tokenCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment and applies the
// configured log level.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	c.SetLogLevel(level)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A non-empty input reads
// the snapshot from that file instead of the configured store.
func (c *CLI) newRunner(ctx context.Context, input string, noCache bool) (*pipeline.Runner, error) {
	st, keyer, err := c.openStore(ctx, input)
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		st.Close()
		return nil, err
	}
	return pipeline.NewRunner(st, ch, keyer, c.Logger), nil
}

// openStore opens the snapshot source. File inputs get their own cache
// scope so two files with the same owner never share snapshot entries.
func (c *CLI) openStore(ctx context.Context, input string) (store.Store, cache.Keyer, error) {
	if input == "" {
		opts := c.Config.StoreOptions()
		if opts.Kind == store.KindHTTP && opts.APIToken == "" && opts.APIURL != "" {
			token, err := savedToken(ctx, strings.TrimRight(opts.APIURL, "/"))
			if err != nil {
				return nil, nil, err
			}
			opts.APIToken = token
		}
		st, err := store.Open(ctx, opts)
		return st, nil, err
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, nil, err
	}
	scope := store.KindFile + ":" + cache.Hash([]byte(abs))[:12]
	return store.NewFileStore(input, c.Config.Store.TrunkBranch), cache.NewScopedKeyer(nil, scope), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
			Prefix:   c.Config.Cache.RedisPrefix,
		})
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Debug("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lifetree/).
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

// layoutFlags are the layout and load flags shared by layout, render,
// inspect and browse. Unset flags fall back to the config file.
type layoutFlags struct {
	owner       string
	noCache     bool
	refresh     bool
	noHeader    bool
	headerLabel string
	sideOrder   string
	dateFormat  string
	trunkX      float64
	sideX       float64
	rowHeight   float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.owner, "owner", "", "timeline owner (user ID) to load from the store")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "reload the snapshot even if cached")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "omit the title header")
	cmd.Flags().StringVar(&f.headerLabel, "header", "", "header label")
	cmd.Flags().StringVar(&f.sideOrder, "side-order", "", "side branch order: reverse (default), registration")
	cmd.Flags().StringVar(&f.dateFormat, "date-format", "", "Go time layout for node dates")
	cmd.Flags().Float64Var(&f.trunkX, "trunk-x", 0, "x of trunk nodes")
	cmd.Flags().Float64Var(&f.sideX, "side-x", 0, "x of side-branch nodes")
	cmd.Flags().Float64Var(&f.rowHeight, "row-height", 0, "vertical distance between rows")
}

// baseOptions returns pipeline options from the layout config section.
func (c *CLI) baseOptions() pipeline.Options {
	l := c.Config.Layout
	opts := pipeline.Options{
		TrunkX:      l.TrunkX,
		SideX:       l.SideX,
		RowHeight:   l.RowHeight,
		OffsetY:     l.OffsetY,
		HeaderLabel: l.HeaderLabel,
		DateFormat:  l.DateFormat,
		SideOrder:   l.SideOrder,
		Logger:      c.Logger,
	}
	opts.SetRenderDefaults()
	return opts
}

// pipelineOptions overlays the flags the user set on the config defaults.
// Snapshot files are always re-read; only their layouts are cached.
func (c *CLI) pipelineOptions(cmd *cobra.Command, f *layoutFlags, input string) pipeline.Options {
	opts := c.baseOptions()
	opts.Owner = f.owner
	opts.Refresh = f.refresh || input != ""
	opts.NoHeader = f.noHeader

	changed := cmd.Flags().Changed
	if changed("header") {
		opts.HeaderLabel = f.headerLabel
	}
	if changed("side-order") {
		opts.SideOrder = f.sideOrder
	}
	if changed("date-format") {
		opts.DateFormat = f.dateFormat
	}
	if changed("trunk-x") {
		opts.TrunkX = f.trunkX
	}
	if changed("side-x") {
		opts.SideX = f.sideX
	}
	if changed("row-height") {
		opts.RowHeight = f.rowHeight
	}
	return opts
}

// inputArg returns the optional snapshot file argument.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
