package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/buildinfo"
	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/colorize"
	"github.com/matzehuels/heightchart/pkg/config"
	"github.com/matzehuels/heightchart/pkg/errors"
	chartio "github.com/matzehuels/heightchart/pkg/io"
	"github.com/matzehuels/heightchart/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// convergeFrames bounds the frames a one-shot render spends converging the
	// narrow layout before it is drawn.
	convergeFrames = 500
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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Heightchart compares heights on a shared scale",
		Long:         `Heightchart lines people and objects up along a common baseline against a ruled scale, fits them to the available width and exports or shares the result.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(stdout)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/heightchart/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.scaleCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.shareCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Component Factories
// =============================================================================

// newCache opens the configured asset cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.Redis)
	}
	dir, err := c.cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newColorizer builds a colorizer that reads local assets relative to root.
func (c *CLI) newColorizer(backend cache.Cache, root string) *colorize.Colorizer {
	return colorize.New(colorize.NewRouter(root),
		colorize.WithCache(backend),
		colorize.WithTTL(c.cfg.Cache.TTL),
		colorize.WithLogger(c.Logger),
	)
}

// newStore seeds a store with a chart.
func (c *CLI) newStore(chart chartio.Chart) *store.Store {
	opts := append(c.cfg.StoreOptions(), store.WithInitial(chart.Avatars), store.WithLogger(c.Logger))
	st := store.New(opts...)
	if chart.Zoom > 0 {
		st.SetZoom(chart.Zoom)
	}
	return st
}

// viewport describes the container a command lays the board out in.
type viewport struct {
	width, height float64
	narrow        string // "auto", "true" or "false"
}

// narrowOverride reports the forced viewport class, if any.
func (vp viewport) narrowOverride() (narrow, ok bool) {
	switch vp.narrow {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// boardConfig returns the configured board with the viewport applied.
func (c *CLI) boardConfig(vp viewport, title string) board.Config {
	bc := c.cfg.BoardConfig()
	if vp.width > 0 {
		bc.Width = vp.width
	}
	if vp.height > 0 {
		bc.Height = vp.height
	}
	if title != "" {
		bc.Title = title
	}
	return bc
}

// layoutChart lays a chart out once, with the narrow convergence loop run
// to completion.
func (c *CLI) layoutChart(chart chartio.Chart, vp viewport) board.Layout {
	opts := []board.Option{board.WithLogger(c.Logger)}
	if narrow, ok := vp.narrowOverride(); ok {
		opts = append(opts, board.WithNarrow(narrow))
	}
	l := board.Converge(c.newStore(chart), c.boardConfig(vp, chart.Title), convergeFrames, opts...)
	c.Logger.Debug("laid out", "strategy", l.Strategy, "compression", l.Compression)
	return l
}

// loadChart reads a chart file. A missing file is an empty chart when
// allowMissing is set.
func loadChart(path string, allowMissing bool) (chartio.Chart, error) {
	chart, err := chartio.ImportJSON(path)
	if err != nil && allowMissing && errors.Is(err, errors.ErrCodeFileNotFound) {
		return chartio.Chart{}, nil
	}
	return chart, err
}

// saveChart writes the store contents back to path.
func saveChart(path, title string, st *store.Store) error {
	return chartio.ExportJSON(chartio.Chart{Title: title, Zoom: st.Zoom(), Avatars: st.Avatars()}, path)
}

// avatarSummary is the one-line description used in command output.
func avatarSummary(a avatar.Avatar) string {
	return a.DisplayName() + " (" + string(a.Kind) + ")"
}
