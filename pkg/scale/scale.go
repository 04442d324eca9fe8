// Package scale generates the ruled rows drawn behind a height chart.
//
// The chart is divided into rowCount horizontal bands. Each generated row
// carries the length (in cm) it marks and that length in feet and inches.
// Lengths decrease from the top of the board; the row at [BaselineIndex]
// marks zero and the two rows below it extend into negative lengths, which
// frames the baseline with a small margin.
//
// Rows are plain values returned in a fresh slice on every call, so callers
// can compare two generations by value to see whether a redraw is needed.
package scale

import (
	"math"

	"github.com/matzehuels/heightchart/pkg/units"
)

const (
	// DefaultRows is the number of bands the board is divided into.
	DefaultRows = 27

	// DefaultBaseline is the smallest reference height. An empty board is
	// drawn as if its tallest avatar were this tall.
	DefaultBaseline = 180.0

	// DefaultScalingFactor adds headroom above the tallest avatar.
	DefaultScalingFactor = 1.25

	// MinRows is the smallest row count Generate accepts.
	MinRows = 4
)

// Row is one ruled gridline.
type Row struct {
	Length   float64          `json:"cm"`
	Imperial units.FeetInches `json:"imperial"`
}

// Label returns the rounded centimetre label drawn on the left.
func (r Row) Label() string { return units.RowLabel(r.Length) }

// ImperialLabel returns the feet/inches label drawn on the right.
func (r Row) ImperialLabel() string { return r.Imperial.Scale() }

// IsBaseline reports whether the row marks zero once rounded.
func (r Row) IsBaseline() bool { return r.Label() == "0" }

// Reference returns the tallest height, floored at baseline.
func Reference(heights []float64, baseline float64) float64 {
	ref := baseline
	for _, h := range heights {
		if h > ref && !math.IsInf(h, 0) {
			ref = h
		}
	}
	return ref
}

// Delta returns the length between two adjacent rows.
func Delta(referenceCm float64, rowCount int, scalingFactor, compression float64) float64 {
	rowCount = clampRows(rowCount)
	return referenceCm * scalingFactor * compression / float64(rowCount)
}

// Generate returns rowCount-1 rows for the given reference height.
//
// Row i has length delta*(rowCount-i-3) where
// delta = referenceCm*scalingFactor*compression/rowCount. Row counts below
// [MinRows] are raised to MinRows.
func Generate(referenceCm float64, rowCount int, scalingFactor, compression float64) []Row {
	rowCount = clampRows(rowCount)
	delta := Delta(referenceCm, rowCount, scalingFactor, compression)

	rows := make([]Row, rowCount-1)
	for i := range rows {
		cm := delta * float64(rowCount-i-3)
		rows[i] = Row{Length: cm, Imperial: units.Convert(cm)}
	}
	return rows
}

// BaselineIndex returns the index of the zero-length row.
func BaselineIndex(rowCount int) int {
	return clampRows(rowCount) - 3
}

func clampRows(n int) int {
	return max(n, MinRows)
}
