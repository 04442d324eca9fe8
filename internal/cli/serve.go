package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/internal/server"
	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/colorize"
	"github.com/matzehuels/heightchart/pkg/config"
	"github.com/matzehuels/heightchart/pkg/errors"
	chartio "github.com/matzehuels/heightchart/pkg/io"
	"github.com/matzehuels/heightchart/pkg/share"
)

type serveOpts struct {
	addr    string
	chart   string
	save    bool
	noShare bool
}

// serveCommand runs the HTTP API and the share boundary.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API and share endpoint over HTTP",
		Long: `Serve runs one board session over HTTP. The board can be seeded from a
chart file and, with --save, is written back to it on shutdown. The share
endpoint stores payloads in the backend named by [share] store.`,
		Example: `  heightchart serve
  heightchart serve --addr :9090 --chart team.json --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.save && opts.chart == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--save needs --chart")
			}
			return c.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.chart, "chart", "", "chart file to seed the board with")
	cmd.Flags().BoolVar(&opts.save, "save", false, "write the board back to --chart on shutdown")
	cmd.Flags().BoolVar(&opts.noShare, "no-share", false, "do not mount the share endpoint")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	var chart chartio.Chart
	if opts.chart != "" {
		var err error
		if chart, err = loadChart(opts.chart, true); err != nil {
			return err
		}
	}

	b := board.New(c.newStore(chart), c.boardConfig(viewport{}, chart.Title), board.WithLogger(c.Logger))
	defer b.Close()

	assets, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer assets.Close()

	serverOpts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithColorizer(c.serverColorizer(assets)),
	}
	if !opts.noShare {
		items, err := c.newShareStore(ctx)
		if err != nil {
			return err
		}
		defer items.Close()
		serverOpts = append(serverOpts, server.WithShareHandler(share.NewHandler(items,
			share.WithItemTTL(c.cfg.Share.TTL),
			share.WithHandlerLogger(c.Logger),
		)))
	}

	addr := c.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	printSuccess("Serving on %s", StyleLink.Render(addr))
	printDetail("board %s · share store %s · cache %s", b.Strategy(), c.cfg.Share.Store, c.cfg.Cache.Backend)

	err = server.New(b, serverOpts...).ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout, c.cfg.Server.WriteTimeout)
	if opts.save {
		if serr := saveChart(opts.chart, chart.Title, b.Store()); serr != nil {
			c.Logger.Error("save chart", "path", opts.chart, "err", serr)
		} else {
			printFile(opts.chart)
		}
	}
	return err
}

// serverColorizer proxies remote assets and, when [server] assets_root is
// set, local ones below it.
func (c *CLI) serverColorizer(backend cache.Cache) *colorize.Colorizer {
	router := colorize.NewRouter(c.cfg.Server.AssetsRoot)
	if c.cfg.Server.AssetsRoot == "" {
		router.File = nil
	}
	return colorize.New(router,
		colorize.WithCache(backend),
		colorize.WithTTL(c.cfg.Cache.TTL),
		colorize.WithLogger(c.Logger),
	)
}

// newShareStore opens the configured share item backend.
func (c *CLI) newShareStore(ctx context.Context) (share.Store, error) {
	switch c.cfg.Share.Store {
	case config.BackendFile:
		dir, err := c.cfg.ShareDir()
		if err != nil {
			return nil, err
		}
		return share.NewFileStore(dir)
	case config.BackendRedis:
		return share.NewRedisStore(ctx, c.cfg.Share.Redis)
	case config.BackendMongo:
		return share.NewMongoStore(ctx, c.cfg.Share.Mongo)
	case config.BackendMemory, "":
		return share.NewMemoryStore(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown share store %q", c.cfg.Share.Store)
}
