package units

import (
	"math"
	"testing"

	"github.com/matzehuels/heightchart/pkg/errors"
)

func TestParseHeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"180", 180},
		{"180cm", 180},
		{" 172.5 cm ", 172.5},
		{"1.8m", 180},
		{`5'11"`, 71 * CmPerInch},
		{"5' 11''", 71 * CmPerInch},
		{"5ft 11in", 71 * CmPerInch},
		{"5 FT 11 IN", 71 * CmPerInch},
		{"6'", 72 * CmPerInch},
		{"71in", 71 * CmPerInch},
		{"6 feet", 72 * CmPerInch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHeight(tt.in)
			if err != nil {
				t.Fatalf("ParseHeight(%q): %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseHeight(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseHeightErrors(t *testing.T) {
	tests := []struct {
		in   string
		code errors.Code
	}{
		{"", errors.ErrCodeInvalidInput},
		{"tall", errors.ErrCodeInvalidInput},
		{"5m11", errors.ErrCodeInvalidInput},
		{"-5", errors.ErrCodeInvalidInput},
		{"0", errors.ErrCodeInvalidAvatar},
		{"0ft 0in", errors.ErrCodeInvalidAvatar},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if _, err := ParseHeight(tt.in); !errors.Is(err, tt.code) {
				t.Errorf("ParseHeight(%q) err = %v, want %s", tt.in, err, tt.code)
			}
		})
	}
}
