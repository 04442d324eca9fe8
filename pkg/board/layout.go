package board

import (
	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/compress"
	"github.com/matzehuels/heightchart/pkg/scale"
	"github.com/matzehuels/heightchart/pkg/units"
)

// Layout is a computed board: everything a sink needs to draw it. It is a
// value; holding one does not keep the board alive.
type Layout struct {
	Title       string   `json:"title"`
	Strategy    string   `json:"strategy"`
	Mode        string   `json:"mode"`
	Narrow      bool     `json:"narrow"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Zoom        float64  `json:"zoom"`
	Compression float64  `json:"compression"`
	Tallest     float64  `json:"tallest"`      // cm, floored at the baseline
	BoardHeight float64  `json:"board_height"` // cm represented by the full board
	BaselineY   float64  `json:"baseline_y"`   // px
	RowHeight   float64  `json:"row_height"`   // px between two ruled rows, zoom applied
	RowWidth    float64  `json:"row_width"`    // px occupied by the avatar row
	Overflow    bool     `json:"overflow"`     // the avatar row is wider than the board
	CanUndo     bool     `json:"can_undo"`
	CanRedo     bool     `json:"can_redo"`
	Rows        []Line   `json:"rows"`
	Visuals     []Visual `json:"avatars"`
}

// Line is one ruled row positioned on the board.
type Line struct {
	scale.Row
	Y        float64 `json:"y"`
	Baseline bool    `json:"baseline"`
	Cm       string  `json:"cm_label"`
	Ft       string  `json:"ft_label"`
}

// Visual is one avatar positioned on the board. X and Y are the top-left
// corner of its box; the box bottom sits on the baseline.
type Visual struct {
	Avatar   avatar.Avatar `json:"avatar"`
	Index    int           `json:"index"`
	Fraction float64       `json:"fraction"` // Height / BoardHeight
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Labels   Labels        `json:"labels"`
	Controls Controls      `json:"controls"`
}

// Labels are the strings drawn above an avatar.
type Labels struct {
	Name     string `json:"name"`
	Height   string `json:"height"`           // 180.0 cm
	Weight   string `json:"weight,omitempty"` // 75 kg
	Imperial string `json:"imperial"`         // 5ft 11in
}

// Controls lists the actions offered on an avatar.
type Controls struct {
	Edit   bool `json:"edit"`
	Remove bool `json:"remove"`
}

// BoardHeight returns the centimetres represented by the full board.
func BoardHeight(tallest, scalingFactor, compression float64) float64 {
	return tallest * scalingFactor * compression
}

// Fraction returns height relative to a board height. A non-positive board
// height yields 0.
func Fraction(height, boardHeight float64) float64 {
	if boardHeight <= 0 {
		return 0
	}
	return height / boardHeight
}

// geometry holds the inputs shared by measurement and layout.
type geometry struct {
	cfg     Config
	metrics Metrics
	width   float64
	height  float64
}

func heights(avs []avatar.Avatar) []float64 {
	hs := make([]float64, len(avs))
	for i, a := range avs {
		hs[i] = a.Height
	}
	return hs
}

func (g geometry) tallest(avs []avatar.Avatar) float64 {
	return scale.Reference(heights(avs), g.cfg.Baseline)
}

// slot returns the box width for an avatar drawn pixelHeight tall.
func (g geometry) slot(a avatar.Avatar, pixelHeight float64) float64 {
	w := max(g.metrics.MinWidth, pixelHeight*a.AspectRatio())
	if g.metrics.MaxWidth > 0 {
		w = min(w, g.metrics.MaxWidth)
	}
	return w
}

// rowWidth sums slot widths plus gaps at the given compression and zoom.
func (g geometry) rowWidth(avs []avatar.Avatar, compression, zoom float64) float64 {
	bh := BoardHeight(g.tallest(avs), g.cfg.ScalingFactor, compression)
	total := 0.0
	for _, a := range avs {
		total += g.slot(a, Fraction(a.Height, bh)*g.height*zoom) + g.metrics.Gap
	}
	return total
}

// measure reports the row width at compression, unzoomed. Available has the
// strategy margin subtracted.
func (g geometry) measure(avs []avatar.Avatar, compression float64) compress.Measurement {
	return compress.Measurement{
		Count:     len(avs),
		Total:     g.rowWidth(avs, compression, 1),
		Available: g.width - g.metrics.Margin,
	}
}

// layout positions rows and visuals.
func (g geometry) layout(avs []avatar.Avatar, compression, zoom float64) Layout {
	rows := g.cfg.Rows
	tallest := g.tallest(avs)
	bh := BoardHeight(tallest, g.cfg.ScalingFactor, compression)
	baseY := float64(rows-1) / float64(rows) * g.height
	step := g.height / float64(rows) * zoom
	baseIdx := scale.BaselineIndex(rows)

	l := Layout{
		Title:       g.cfg.Title,
		Width:       g.width,
		Height:      g.height,
		Zoom:        zoom,
		Compression: compression,
		Tallest:     tallest,
		BoardHeight: bh,
		BaselineY:   baseY,
		RowHeight:   step,
	}

	for i, r := range scale.Generate(tallest, rows, g.cfg.ScalingFactor, compression) {
		l.Rows = append(l.Rows, Line{
			Row:      r,
			Y:        baseY - float64(baseIdx-i)*step,
			Baseline: i == baseIdx,
			Cm:       r.Label(),
			Ft:       r.ImperialLabel(),
		})
	}

	l.Visuals = make([]Visual, len(avs))
	total := 0.0
	for i, a := range avs {
		frac := Fraction(a.Height, bh)
		h := frac * g.height * zoom
		w := g.slot(a, h)
		l.Visuals[i] = Visual{
			Avatar:   a,
			Index:    i,
			Fraction: frac,
			Y:        baseY - h,
			Width:    w,
			Height:   h,
			Labels:   labelsFor(a),
			Controls: Controls{Edit: a.IsPerson(), Remove: true},
		}
		total += w + g.metrics.Gap
	}

	x := max(g.metrics.Padding/2, (g.width-total)/2)
	for i := range l.Visuals {
		l.Visuals[i].X = x + g.metrics.Gap/2
		x += l.Visuals[i].Width + g.metrics.Gap
	}
	l.RowWidth = total
	l.Overflow = total > g.width-g.metrics.Padding
	return l
}

func labelsFor(a avatar.Avatar) Labels {
	lb := Labels{
		Name:     a.DisplayName(),
		Height:   units.FormatCm(a.Height),
		Imperial: units.Convert(a.Height).Label(),
	}
	if a.HasWeight() {
		lb.Weight = units.FormatKg(a.Weight)
	}
	return lb
}
