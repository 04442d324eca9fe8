// Package units converts metric lengths to the imperial display pairs shown
// next to every avatar and on every ruled scale row.
//
// All functions are pure: the same input always yields the same output and
// nothing here panics, which lets renderers call them freely per frame.
package units

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// CmPerInch is the exact international inch.
	CmPerInch = 2.54

	// InchesPerFoot is the divisor that defines one whole foot. A converted
	// remainder never reaches this value.
	InchesPerFoot = 12
)

// FeetInches is a length expressed as whole feet plus a rounded inch remainder.
// Inches is always in [0, InchesPerFoot).
type FeetInches struct {
	Feet   int `json:"ft"`
	Inches int `json:"in"`
}

// maxFeet is the first float64 foot count that no longer converts to an int.
const maxFeet = float64(math.MaxInt)

// Convert maps a length in centimeters to feet and inches.
//
// The inch remainder is rounded to the nearest whole inch; a remainder that
// rounds up to 12 carries into the next foot. Zero, negative and non-finite
// inputs clamp to {0, 0}. Lengths whose foot count does not fit in an int
// saturate at {math.MaxInt, 0}.
func Convert(cm float64) FeetInches {
	if math.IsNaN(cm) || math.IsInf(cm, 0) || cm <= 0 {
		return FeetInches{}
	}
	totalInches := cm / CmPerInch
	rem := math.Mod(totalInches, InchesPerFoot)
	wholeFeet := math.Round((totalInches - rem) / InchesPerFoot)
	if wholeFeet >= maxFeet {
		return FeetInches{Feet: math.MaxInt}
	}
	feet := int(wholeFeet)
	inches := int(math.Round(rem))
	if inches >= InchesPerFoot {
		feet++
		inches -= InchesPerFoot
	}
	return FeetInches{Feet: feet, Inches: inches}
}

// Scale formats the pair the way the ruled scale prints it: 5' 11".
func (f FeetInches) Scale() string {
	return fmt.Sprintf("%d' %d\"", f.Feet, f.Inches)
}

// Label formats the pair the way avatar labels print it: 5ft 11in.
func (f FeetInches) Label() string {
	return fmt.Sprintf("%dft %din", f.Feet, f.Inches)
}

// String implements fmt.Stringer using the avatar label format.
func (f FeetInches) String() string { return f.Label() }

// FormatCm formats a height in centimeters with one decimal: "180.0 cm".
func FormatCm(cm float64) string {
	return strconv.FormatFloat(cm, 'f', 1, 64) + " cm"
}

// FormatKg formats a weight in kilograms without trailing zeros: "72.5 kg".
func FormatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64) + " kg"
}

// RowLabel formats a ruled-row length as a rounded integer. Values that
// round to zero print as "0" regardless of sign.
func RowLabel(cm float64) string {
	r := math.Round(cm)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}
