package units

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/heightchart/pkg/errors"
)

var (
	reMetric   = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(cm|m)?$`)
	reImperial = regexp.MustCompile(`^(?:(\d+)\s*(?:'|ft|feet|foot))?\s*(?:(\d+(?:\.\d+)?)\s*(?:"|''|in|inch|inches))?$`)
)

// ParseHeight reads a height typed by a user and returns centimeters.
//
// Accepted forms: "180", "180cm", "1.8m", "5'11\"", "5ft 11in", "5'", "71in".
// A bare number is centimeters.
func ParseHeight(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "height is empty")
	}

	if m := reMetric.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse height %q", s)
		}
		if m[2] == "m" {
			v *= 100
		}
		return v, errors.ValidateHeight(v)
	}

	m := reImperial.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unrecognized height %q", s)
	}
	var inches float64
	if m[1] != "" {
		ft, _ := strconv.Atoi(m[1])
		inches += float64(ft * InchesPerFoot)
	}
	if m[2] != "" {
		in, _ := strconv.ParseFloat(m[2], 64)
		inches += in
	}
	cm := inches * CmPerInch
	return cm, errors.ValidateHeight(cm)
}
