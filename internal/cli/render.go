package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/board/sink"
	"github.com/matzehuels/heightchart/pkg/colorize"
	chartio "github.com/matzehuels/heightchart/pkg/io"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
	formatPNG  = "png"
	formatPDF  = "pdf"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats), "-" for stdout
	formats    []string // output formats: "svg", "json", "png", "pdf"
	vp         viewport // container size and viewport class
	zoom       float64  // overrides the chart's zoom when > 0
	title      string   // overrides the chart title
	assetsRoot string   // directory local asset locators resolve against
	noAssets   bool     // draw placeholders instead of fetching person assets
	noCache    bool     // bypass the asset cache
	background string   // svg background fill
	noImperial bool     // hide ft/in labels
	noLabels   bool     // hide avatar labels
	scale      float64  // raster scale factor
	compact    bool     // compact json
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{vp: viewport{narrow: "auto"}, scale: 1}

	cmd := &cobra.Command{
		Use:   "render [chart.json]",
		Short: "Render a chart to SVG, JSON, PNG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if err := validateNarrow(opts.vp.narrow); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return fmt.Errorf("stdout output takes a single format, got %d", len(opts.formats))
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.vp.width, "width", 0, "board width in pixels (default from config)")
	cmd.Flags().Float64Var(&opts.vp.height, "height", 0, "board height in pixels (default from config)")
	cmd.Flags().StringVar(&opts.vp.narrow, "narrow", opts.vp.narrow, "viewport class: auto, true, false")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "zoom level (default from chart)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (default from chart)")
	cmd.Flags().StringVar(&opts.assetsRoot, "assets-root", "", "directory for local asset paths (default: the chart's directory)")
	cmd.Flags().BoolVar(&opts.noAssets, "no-assets", false, "draw placeholders instead of person assets")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the asset cache")
	cmd.Flags().StringVar(&opts.background, "background", "#ffffff", "background color, empty for transparent")
	cmd.Flags().BoolVar(&opts.noImperial, "no-imperial", false, "hide ft/in labels")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "hide avatar labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png, pdf)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "compact JSON output")

	registerNarrowCompletion(cmd)
	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatJSON: true, formatPNG: true, formatPDF: true}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'png' or 'pdf')", f)
		}
	}
	return nil
}

func validateNarrow(s string) error {
	switch s {
	case "auto", "true", "false":
		return nil
	}
	return fmt.Errorf("invalid --narrow: %s (must be 'auto', 'true' or 'false')", s)
}

func registerNarrowCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("narrow", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "true", "false"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, ...), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file a format is written to. A single format with
// an explicit output path uses it as given.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" && filepath.Ext(opts.output) != "" {
		return opts.output
	}
	base := basePath(opts.output, input)
	if base == strings.TrimSuffix(input, filepath.Ext(input)) && format == formatJSON && filepath.Ext(input) == ".json" {
		// Never overwrite the chart file with its own layout.
		base += ".layout"
	}
	return base + "." + format
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	chart, err := loadChart(input, false)
	if err != nil {
		return err
	}
	if opts.zoom > 0 {
		chart.Zoom = opts.zoom
	}
	if opts.title != "" {
		chart.Title = opts.title
	}

	chart.Avatars = c.newStore(chart).Avatars()
	assets := colorize.Assets{}
	missing := 0
	if !opts.noAssets {
		root := opts.assetsRoot
		if root == "" {
			root = filepath.Dir(input)
		}
		if assets, missing, err = c.resolveAssets(ctx, chart, root, opts.noCache); err != nil {
			return err
		}
		chart.Avatars = assets.WithAspects(chart.Avatars)
	}

	l := c.layoutChart(chart, opts.vp)
	svgOpts := svgOptions(opts, assets)

	var written []string
	for _, format := range opts.formats {
		data, err := encodeLayout(ctx, l, format, opts, svgOpts)
		if err != nil {
			return err
		}
		if opts.output == "-" {
			_, err := stdout.Write(data)
			return err
		}
		path := outputPath(opts, input, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	prog.done("Rendered", "formats", strings.Join(opts.formats, ","))
	printSuccess("Rendered %s", filepath.Base(input))
	for _, p := range written {
		printFile(p)
	}
	printBoardStats(len(l.Visuals), l.Tallest, l.Compression, l.Strategy, l.Overflow)
	if missing > 0 {
		printWarning("%d person assets could not be loaded and were drawn as placeholders", missing)
	}
	return nil
}

// resolveAssets loads the recolored person assets of chart. Failed assets
// are logged and drawn as placeholders.
func (c *CLI) resolveAssets(ctx context.Context, chart chartio.Chart, root string, noCache bool) (colorize.Assets, int, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, 0, err
	}
	defer backend.Close()

	assets, failed := c.newColorizer(backend, root).Resolve(ctx, chart.Avatars, 0)
	for id, err := range failed {
		c.Logger.Warn("asset unavailable, drawing placeholder", "avatar", id, "err", err)
	}
	return assets, len(failed), nil
}

func svgOptions(opts *renderOpts, assets colorize.Assets) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithAssets(func(v board.Visual) (string, bool) { return assets.SVG(v.Avatar.ID) }),
		sink.WithBackground(opts.background),
	}
	if opts.noImperial {
		svgOpts = append(svgOpts, sink.WithoutImperial())
	}
	if opts.noLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	return svgOpts
}

func encodeLayout(ctx context.Context, l board.Layout, format string, opts *renderOpts, svgOpts []sink.SVGOption) ([]byte, error) {
	switch format {
	case formatJSON:
		var jsonOpts []sink.JSONOption
		if opts.compact {
			jsonOpts = append(jsonOpts, sink.WithJSONCompact())
		}
		return sink.RenderJSON(l, jsonOpts...)
	case formatPNG:
		return sink.RenderPNG(ctx, l, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.scale))
	case formatPDF:
		return sink.RenderPDF(ctx, l, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.scale))
	default:
		return sink.RenderSVG(l, svgOpts...), nil
	}
}
