package compress

import (
	"context"

	"github.com/matzehuels/heightchart/pkg/observability"
)

// Continuous is the one-shot compression engine for wide viewports.
//
// Callers pass natural widths, measured at compression Min. Because the
// required ratio is derived from widths that do not depend on the current
// value, recomputing at a stable layout always yields the same result.
//
// Continuous is not safe for concurrent use; the owning board serializes
// access.
type Continuous struct {
	bounds Bounds
	margin float64
	value  float64
}

// NewContinuous returns an engine at b.Min. An invalid range falls back to
// [DefaultBounds]; a negative margin is treated as zero.
func NewContinuous(b Bounds, margin float64) *Continuous {
	b = b.orDefault()
	return &Continuous{bounds: b, margin: max(0, margin), value: b.Min}
}

// Value returns the current compression.
func (c *Continuous) Value() float64 { return c.value }

// Bounds returns the configured range.
func (c *Continuous) Bounds() Bounds { return c.bounds }

// Margin returns the width subtracted from the available container width.
func (c *Continuous) Margin() float64 { return c.margin }

// Required returns total/(available-margin). An available width at or below
// the margin reports +Inf.
func (c *Continuous) Required(total, available float64) float64 {
	room := available - c.margin
	if room <= 0 {
		return inf
	}
	return total / room
}

// Recompute updates the compression from a natural-width measurement and
// reports whether it changed.
//
// A required ratio above 1 sets the compression to min(Max, ratio) in a
// single jump. A ratio at or below 1 resets an elevated compression to Min.
// Zero avatars leave the compression at Min.
func (c *Continuous) Recompute(count int, total, available float64) (float64, bool) {
	prev := c.value
	switch {
	case count == 0:
		c.value = c.bounds.Min
	default:
		if r := c.Required(total, available); r > 1 {
			c.value = c.bounds.Clamp(r)
		} else if c.value > c.bounds.Min {
			c.value = c.bounds.Min
		}
	}
	if c.value == prev {
		return c.value, false
	}
	observability.Board().OnCompression(context.Background(), string(ModeContinuous), prev, c.value)
	return c.value, true
}

// Reset returns the compression to Min.
func (c *Continuous) Reset() { c.value = c.bounds.Min }
