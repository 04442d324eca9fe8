// Package avatar defines the comparable entities placed on a height chart.
//
// An [Avatar] is a person or an object with a height in centimeters, an
// optional weight, a fill color and a locator for its visual asset. Avatars
// are plain values: collections copy them freely and never share mutable
// state between snapshots.
package avatar

import (
	"github.com/matzehuels/heightchart/pkg/errors"
)

// Kind distinguishes people from objects. People are drawn from recolorable
// vector assets and can be edited; objects are drawn from their image as-is.
type Kind string

const (
	KindPerson Kind = "person"
	KindObject Kind = "object"
)

// Default width/height ratios used when an avatar carries no explicit aspect.
const (
	DefaultPersonAspect = 0.38
	DefaultObjectAspect = 0.6
)

// Avatar is one entity on the chart.
//
// The JSON shape matches the share payload: the asset locator is serialized
// under "avatar" and the kind under "type".
type Avatar struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"type"`
	Name    string  `json:"name"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight,omitempty"`
	Color   string  `json:"color,omitempty"`
	Locator string  `json:"avatar,omitempty"`
	Aspect  float64 `json:"aspect,omitempty"`
}

// IsPerson reports whether the avatar is a person. Unknown kinds are
// treated as objects.
func (a Avatar) IsPerson() bool { return a.Kind == KindPerson }

// HasWeight reports whether a weight was recorded.
func (a Avatar) HasWeight() bool { return a.Weight > 0 }

// DisplayName returns the name shown on the board, falling back to "Unknown".
func (a Avatar) DisplayName() string {
	if a.Name == "" {
		return "Unknown"
	}
	return a.Name
}

// AspectRatio returns the width/height ratio used for horizontal packing.
func (a Avatar) AspectRatio() float64 {
	if a.Aspect > 0 {
		return a.Aspect
	}
	if a.IsPerson() {
		return DefaultPersonAspect
	}
	return DefaultObjectAspect
}

// Validate checks the avatar invariants: positive finite height, non-negative
// weight, a known kind and safe name/color/locator values.
func (a Avatar) Validate() error {
	if err := errors.ValidateHeight(a.Height); err != nil {
		return err
	}
	if err := errors.ValidateWeight(a.Weight); err != nil {
		return err
	}
	switch a.Kind {
	case KindPerson, KindObject:
	default:
		return errors.New(errors.ErrCodeInvalidAvatar, "unknown avatar type %q", a.Kind)
	}
	if err := errors.ValidateName(a.Name); err != nil {
		return err
	}
	if err := errors.ValidateColor(a.Color); err != nil {
		return err
	}
	if err := errors.ValidateLocator(a.Locator); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAvatar, err, "invalid asset locator")
	}
	if a.Aspect < 0 {
		return errors.New(errors.ErrCodeInvalidAvatar, "aspect cannot be negative")
	}
	return nil
}

// Patch lists the fields an edit may replace. Nil fields are left untouched.
// The id is never patchable.
type Patch struct {
	Kind    *Kind    `json:"type,omitempty"`
	Name    *string  `json:"name,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
	Color   *string  `json:"color,omitempty"`
	Locator *string  `json:"avatar,omitempty"`
	Aspect  *float64 `json:"aspect,omitempty"`
}

// Apply returns a copy of a with the patch applied. The receiver is not modified.
func (p Patch) Apply(a Avatar) Avatar {
	if p.Kind != nil {
		a.Kind = *p.Kind
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Height != nil {
		a.Height = *p.Height
	}
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.Locator != nil {
		a.Locator = *p.Locator
	}
	if p.Aspect != nil {
		a.Aspect = *p.Aspect
	}
	return a
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Kind == nil && p.Name == nil && p.Height == nil && p.Weight == nil &&
		p.Color == nil && p.Locator == nil && p.Aspect == nil
}

// Tallest returns the maximum height in the list, or floor when the list is
// empty or every avatar is shorter.
func Tallest(avatars []Avatar, floor float64) float64 {
	tallest := floor
	for _, a := range avatars {
		tallest = max(tallest, a.Height)
	}
	return tallest
}

// IDs returns the ids of avatars in order.
func IDs(avatars []Avatar) []string {
	ids := make([]string, len(avatars))
	for i, a := range avatars {
		ids[i] = a.ID
	}
	return ids
}
