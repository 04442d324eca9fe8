// Package compress computes the compression multiplier that shrinks a height
// chart until every avatar fits across the board.
//
// Compression is one number in [Bounds.Min, Bounds.Max]. A larger value
// makes the board taller in centimetres, so each avatar is drawn shorter and
// narrower. Two engines produce it:
//
//   - [Continuous] jumps straight to the compression a measured overflow
//     requires. Wide viewports use it whenever the avatar set changes or the
//     container is resized.
//   - [Convergent] walks the compression toward a fit in small steps, one per
//     frame, and stops by itself once a step changes nothing. Narrow
//     viewports use it so the board visibly settles.
//
// Both engines keep the value inside its bounds and are idempotent once
// converged: measuring the same stable layout again changes nothing.
package compress

import "math"

const (
	// DefaultMin is the uncompressed multiplier.
	DefaultMin = 1.0

	// DefaultMax caps compression on desktop boards.
	DefaultMax = 1.5

	// DefaultMargin is subtracted from the available width in continuous mode.
	DefaultMargin = 20.0

	// DefaultStep is the per-frame increment in convergent mode.
	DefaultStep = 0.005

	// DefaultMobileMargin is subtracted from the available width in
	// convergent mode.
	DefaultMobileMargin = 160.0
)

var inf = math.Inf(1)

// Mode names the engine that produced a compression change.
type Mode string

const (
	ModeContinuous Mode = "continuous"
	ModeConvergent Mode = "convergent"
)

// Bounds is the allowed compression range.
type Bounds struct {
	Min float64 `json:"min" toml:"min"`
	Max float64 `json:"max" toml:"max"`
}

// DefaultBounds returns the desktop range [1.0, 1.5].
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMin, Max: DefaultMax}
}

// Valid reports whether the range is usable.
func (b Bounds) Valid() bool {
	return b.Min > 0 && b.Max >= b.Min && !math.IsInf(b.Max, 0)
}

// Clamp restricts v to the range. NaN maps to Min.
func (b Bounds) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return b.Min
	}
	return math.Max(b.Min, math.Min(b.Max, v))
}

// orDefault returns b when valid and the desktop default otherwise.
func (b Bounds) orDefault() Bounds {
	if b.Valid() {
		return b
	}
	return DefaultBounds()
}

// Measurement is the rendered width of the avatar row at some compression.
type Measurement struct {
	Count     int     // number of avatars
	Total     float64 // summed avatar widths, gaps included
	Available float64 // usable container width, margin already subtracted
}

// Fits reports whether the row fits strictly inside the available width.
func (m Measurement) Fits() bool {
	return m.Total < m.Available
}
