package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/pkg/share"
)

type shareOpts struct {
	endpoint string
	origin   string
	noCache  bool
}

// shareCommand uploads a chart to the share endpoint and prints its link.
func (c *CLI) shareCommand() *cobra.Command {
	var opts shareOpts
	cmd := &cobra.Command{
		Use:   "share [chart.json]",
		Short: "Create a share link for a chart",
		Long: `Share uploads the avatars of a chart to the configured share endpoint and
prints a link that opens the same chart. Links are cached, so sharing an
unchanged chart again returns the same link without a request.`,
		Example: `  heightchart share team.json
  heightchart share team.json --endpoint http://localhost:8080/api/share`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShare(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "share endpoint (default from config)")
	cmd.Flags().StringVar(&opts.origin, "origin", "", "origin share links are built on (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always request a new link")
	return cmd
}

func (c *CLI) runShare(ctx context.Context, path string, opts shareOpts) error {
	chart, err := loadChart(path, false)
	if err != nil {
		return err
	}

	endpoint, origin := c.cfg.Share.Endpoint, c.cfg.Share.Origin
	if opts.endpoint != "" {
		endpoint = opts.endpoint
	}
	if opts.origin != "" {
		origin = opts.origin
	}

	links, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer links.Close()

	sharer := share.NewSharer(share.NewHTTPClient(endpoint, nil), origin,
		share.WithLinkCache(links),
		share.WithSharerLogger(c.Logger),
	)

	spinner := newSpinner(ctx, fmt.Sprintf("Sharing %d avatars...", len(chart.Avatars)))
	spinner.Start()
	link, err := sharer.Share(ctx, c.newStore(chart).Avatars())
	if err != nil {
		spinner.StopWithError("Share failed")
		return err
	}
	spinner.StopWithSuccess("Shared " + path)

	fmt.Fprintln(stdout, "  "+StyleLink.Render(link))
	return nil
}
