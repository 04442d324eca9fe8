package board

import (
	"time"

	"github.com/matzehuels/heightchart/pkg/compress"
	"github.com/matzehuels/heightchart/pkg/scale"
)

const (
	// DefaultBreakpoint is the widest viewport still treated as narrow.
	DefaultBreakpoint = 768.0

	// DefaultTitle is drawn in the header row.
	DefaultTitle = "Height Comparison Chart"

	// DefaultWidth and DefaultHeight size a board before the first Resize.
	DefaultWidth  = 1200.0
	DefaultHeight = 700.0
)

// Metrics are the per-strategy layout constants, in pixels.
type Metrics struct {
	Bounds   compress.Bounds `toml:"compression" json:"compression"`
	Margin   float64         `toml:"margin" json:"margin"`       // subtracted from the width the compression engine sees
	Padding  float64         `toml:"padding" json:"padding"`     // horizontal inset of the avatar row
	MinWidth float64         `toml:"min_width" json:"min_width"` // narrowest avatar slot
	MaxWidth float64         `toml:"max_width" json:"max_width"` // widest avatar slot, 0 for unbounded
	Gap      float64         `toml:"gap" json:"gap"`             // space between avatars
	Step     float64         `toml:"step" json:"step"`           // convergent step, mobile only
}

// DesktopMetrics returns the wide-viewport defaults.
func DesktopMetrics() Metrics {
	return Metrics{
		Bounds:   compress.DefaultBounds(),
		Margin:   compress.DefaultMargin,
		Padding:  100,
		MinWidth: 24,
		Gap:      8,
	}
}

// MobileMetrics returns the narrow-viewport defaults.
func MobileMetrics() Metrics {
	return Metrics{
		Bounds:   compress.DefaultBounds(),
		Margin:   compress.DefaultMobileMargin,
		Padding:  10,
		MinWidth: 70,
		Gap:      16,
		Step:     compress.DefaultStep,
	}
}

// Config configures a Board.
type Config struct {
	Rows          int           `toml:"rows" json:"rows"`
	Baseline      float64       `toml:"baseline" json:"baseline"`
	ScalingFactor float64       `toml:"scaling_factor" json:"scaling_factor"`
	Breakpoint    float64       `toml:"breakpoint" json:"breakpoint"`
	AutoNarrow    bool          `toml:"auto_narrow" json:"auto_narrow"` // derive the viewport class from the container width
	Title         string        `toml:"title" json:"title"`
	Width         float64       `toml:"width" json:"width"`
	Height        float64       `toml:"height" json:"height"`
	Debounce      time.Duration `toml:"debounce" json:"debounce"`
	Desktop       Metrics       `toml:"desktop" json:"desktop"`
	Mobile        Metrics       `toml:"mobile" json:"mobile"`
}

// DefaultConfig returns the reference board: 27 rows, 180 cm baseline,
// scaling factor 1.25.
func DefaultConfig() Config {
	return Config{
		Rows:          scale.DefaultRows,
		Baseline:      scale.DefaultBaseline,
		ScalingFactor: scale.DefaultScalingFactor,
		Breakpoint:    DefaultBreakpoint,
		Title:         DefaultTitle,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Debounce:      compress.DefaultDebounce,
		Desktop:       DesktopMetrics(),
		Mobile:        MobileMetrics(),
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Rows < scale.MinRows {
		c.Rows = d.Rows
	}
	if c.Baseline <= 0 {
		c.Baseline = d.Baseline
	}
	if c.ScalingFactor <= 0 {
		c.ScalingFactor = d.ScalingFactor
	}
	if c.Breakpoint <= 0 {
		c.Breakpoint = d.Breakpoint
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	c.Desktop = c.Desktop.withDefaults(d.Desktop)
	c.Mobile = c.Mobile.withDefaults(d.Mobile)
	return c
}

func (m Metrics) withDefaults(d Metrics) Metrics {
	if m == (Metrics{}) {
		return d
	}
	if !m.Bounds.Valid() {
		m.Bounds = d.Bounds
	}
	if m.Step <= 0 {
		m.Step = d.Step
	}
	m.Margin = max(0, m.Margin)
	m.Padding = max(0, m.Padding)
	m.MinWidth = max(0, m.MinWidth)
	m.MaxWidth = max(0, m.MaxWidth)
	m.Gap = max(0, m.Gap)
	return m
}

// IsNarrow reports whether a viewport of the given width uses the narrow
// layout. The breakpoint itself is narrow.
func IsNarrow(width, breakpoint float64) bool {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return width <= breakpoint
}
