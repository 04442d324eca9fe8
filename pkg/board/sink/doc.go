// Package sink renders a computed [board.Layout] into output formats.
//
// # SVG Output
//
// [RenderSVG] draws the ruled scale with centimetre and feet/inch labels
// (the baseline row highlighted), the title header and every avatar sitting
// on the baseline. People are drawn from recolored vector markup supplied
// by an [AssetFunc]; objects are drawn as <image> elements referencing
// their locator. An avatar whose asset is missing or failed to load is
// drawn as a placeholder rectangle of the same size, so the layout is
// unchanged.
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithAssets(assets),
//	    sink.WithBackground("#fafafa"),
//	)
//
// # JSON Output
//
// [RenderJSON] exports the layout data for external tools.
//
// # Raster Output
//
// [RenderPNG] and [RenderPDF] convert the SVG output with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin
// (Linux).
package sink
