package errors

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateHeight checks that a height in centimeters is a positive, finite number.
func ValidateHeight(cm float64) error {
	if math.IsNaN(cm) || math.IsInf(cm, 0) {
		return New(ErrCodeInvalidAvatar, "height must be a finite number")
	}
	if cm <= 0 {
		return New(ErrCodeInvalidAvatar, "height must be positive, got %v", cm)
	}
	return nil
}

// ValidateWeight checks an optional weight in kilograms. Zero means "no weight".
func ValidateWeight(kg float64) error {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return New(ErrCodeInvalidAvatar, "weight must be a finite number")
	}
	if kg < 0 {
		return New(ErrCodeInvalidAvatar, "weight cannot be negative, got %v", kg)
	}
	return nil
}

// ValidateName validates a display name.
//
// Names may be empty (the board shows "Unknown"), but they must not contain
// control characters and are capped at 128 characters.
func ValidateName(name string) error {
	if len(name) > 128 {
		return New(ErrCodeInvalidAvatar, "name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAvatar, "name contains invalid control characters")
		}
	}
	return nil
}

// hexColorRegex matches #rgb, #rgba, #rrggbb and #rrggbbaa.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// namedColorRegex matches CSS color keywords such as "black" or "rebeccapurple".
var namedColorRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates a fill color. An empty color is allowed and means
// "use the asset's own colors".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if hexColorRegex.MatchString(color) || namedColorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidAvatar, "invalid color: %q", color)
}

// ValidateLocator validates an asset locator.
//
// A locator is either an http(s) URL or a relative path. Relative paths are
// rejected when they contain traversal sequences, null bytes or backslashes.
func ValidateLocator(locator string) error {
	if locator == "" {
		return nil
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return ValidateURL(locator)
	}
	return ValidatePath(locator)
}

// maxPathLength caps relative asset paths.
const maxPathLength = 500

// ValidatePath accepts a relative, forward-slash path that stays below the
// directory it is resolved against.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidInput, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "path contains invalid characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidInput, "path must be relative: %s", path)
	case strings.Contains(path, ".."):
		return New(ErrCodeInvalidInput, "path escapes the chart directory: %s", path)
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %s", rawURL)
	}
	return nil
}
