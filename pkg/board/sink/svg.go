package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/heightchart/pkg/board"
)

const (
	lineColor     = "#d0d0d0"
	baselineColor = "#333333"
	labelColor    = "#666666"
	placeholder   = "#e0e0e0"
	fontFamily    = "Helvetica, Arial, sans-serif"
	scaleInset    = 6.0
)

// AssetFunc returns the markup drawn for a person. ok is false while the
// asset is loading or when it failed; the sink then draws a placeholder.
type AssetFunc func(v board.Visual) (markup string, ok bool)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	assets     AssetFunc
	background string
	imperial   bool
	labels     bool
}

func WithAssets(fn AssetFunc) SVGOption     { return func(r *svgRenderer) { r.assets = fn } }
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }
func WithoutImperial() SVGOption            { return func(r *svgRenderer) { r.imperial = false } }
func WithoutLabels() SVGOption              { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG draws the layout as a standalone SVG document.
func RenderSVG(l board.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{imperial: true, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		l.Width, l.Height, l.Width, l.Height, fontFamily)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}

	renderTitle(&buf, l)
	r.renderRows(&buf, l)
	for _, v := range l.Visuals {
		r.renderVisual(&buf, v)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTitle(buf *bytes.Buffer, l board.Layout) {
	if l.Title == "" {
		return
	}
	y := l.RowHeight * 0.75
	if len(l.Rows) > 0 {
		y = min(y, l.Rows[0].Y-4)
	}
	fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-size="18" font-weight="bold">%s</text>`+"\n",
		l.Width/2, max(18, y), escape(l.Title))
}

func (r *svgRenderer) renderRows(buf *bytes.Buffer, l board.Layout) {
	buf.WriteString(`  <g class="scale">` + "\n")
	for _, row := range l.Rows {
		if row.Y < 0 || row.Y > l.Height {
			continue
		}
		color, width := lineColor, 1.0
		if row.Baseline {
			color, width = baselineColor, 2.0
		}
		fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.0f"/>`+"\n",
			row.Y, l.Width, row.Y, color, width)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="11" fill="%s">%s</text>`+"\n",
			scaleInset, row.Y-3, labelColor, escape(row.Cm))
		if r.imperial {
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="11" fill="%s" text-anchor="end">%s</text>`+"\n",
				l.Width-scaleInset, row.Y-3, labelColor, escape(row.Ft))
		}
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderVisual(buf *bytes.Buffer, v board.Visual) {
	fmt.Fprintf(buf, `  <g class="avatar" id="avatar-%s">`+"\n", escape(v.Avatar.ID))

	switch {
	case v.Avatar.IsPerson():
		if markup, ok := r.asset(v); ok {
			fmt.Fprintf(buf, `    <svg x="%.1f" y="%.1f" width="%.1f" height="%.1f">%s</svg>`+"\n",
				v.X, v.Y, v.Width, v.Height, markup)
		} else {
			renderPlaceholder(buf, v)
		}
	case v.Avatar.Locator != "":
		fmt.Fprintf(buf, `    <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="xMidYMax meet"/>`+"\n",
			escape(v.Avatar.Locator), v.X, v.Y, v.Width, v.Height)
	default:
		renderPlaceholder(buf, v)
	}

	if r.labels {
		renderLabels(buf, v, r.imperial)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) asset(v board.Visual) (string, bool) {
	if r.assets == nil {
		return "", false
	}
	return r.assets(v)
}

func renderPlaceholder(buf *bytes.Buffer, v board.Visual) {
	fill := v.Avatar.Color
	if fill == "" {
		fill = placeholder
	}
	fmt.Fprintf(buf, `    <rect class="placeholder" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" fill-opacity="0.4"/>`+"\n",
		v.X, v.Y, v.Width, v.Height, escape(fill))
}

func renderLabels(buf *bytes.Buffer, v board.Visual, imperial bool) {
	lines := []string{v.Labels.Name, v.Labels.Height}
	if imperial {
		lines = append(lines, v.Labels.Imperial)
	}
	if v.Labels.Weight != "" {
		lines = append(lines, v.Labels.Weight)
	}
	cx := v.X + v.Width/2
	top := v.Y - 4 - float64(len(lines)-1)*13
	for i, s := range lines {
		weight := "normal"
		if i == 0 {
			weight = "bold"
		}
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" font-weight="%s">%s</text>`+"\n",
			cx, top+float64(i)*13, weight, escape(s))
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
