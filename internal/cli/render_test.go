package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"json only", "json", []string{"json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "pdf", "png", "json"}, false},
		{"invalid format", []string{"dot"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		format  string
		want    string
	}{
		{"default svg", "", []string{"svg"}, "svg", "charts/team.svg"},
		{"layout json beside chart", "", []string{"json"}, "json", "charts/team.layout.json"},
		{"explicit file", "out/board.svg", []string{"svg"}, "svg", "out/board.svg"},
		{"explicit json file", "out/board.json", []string{"json"}, "json", "out/board.json"},
		{"base for many", "out/board", []string{"svg", "png"}, "png", "out/board.png"},
		{"format extension stripped", "out/board.svg", []string{"svg", "pdf"}, "pdf", "out/board.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &renderOpts{output: tt.output, formats: tt.formats}
			if got := outputPath(opts, "charts/team.json", tt.format); got != filepath.FromSlash(tt.want) && got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVGAndJSON(t *testing.T) {
	chart := writeChart(t, team()...)

	out, err := runCLI(t, "render", chart, "-f", "svg,json", "--width", "1000", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Rendered team.json") || !strings.Contains(out, "3 avatars") {
		t.Errorf("render output:\n%s", out)
	}

	base := strings.TrimSuffix(chart, ".json")
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<svg", "Ana", "Door", "5ft 5in"} {
		if !strings.Contains(string(svg), want) {
			t.Errorf("svg missing %q", want)
		}
	}

	data, err := os.ReadFile(base + ".layout.json")
	if err != nil {
		t.Fatal(err)
	}
	var layout struct {
		Title    string  `json:"title"`
		Strategy string  `json:"strategy"`
		Width    float64 `json:"width"`
		Avatars  []any   `json:"avatars"`
	}
	if err := json.Unmarshal(data, &layout); err != nil {
		t.Fatalf("layout json: %v", err)
	}
	if layout.Title != "Team" || layout.Strategy != "desktop" || layout.Width != 1000 || len(layout.Avatars) != 3 {
		t.Errorf("layout = %+v", layout)
	}

	// the chart itself is untouched
	if _, err := loadChart(chart, false); err != nil {
		t.Errorf("chart unreadable after render: %v", err)
	}
}

func TestRenderNarrowToStdout(t *testing.T) {
	chart := writeChart(t, team()...)

	out, err := runCLI(t, "render", chart, "-f", "json", "-o", "-", "--width", "400", "--compact")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var layout struct {
		Strategy string `json:"strategy"`
		Narrow   bool   `json:"narrow"`
	}
	if err := json.Unmarshal([]byte(out), &layout); err != nil {
		t.Fatalf("stdout is not a layout: %v\n%s", err, out)
	}
	if layout.Strategy != "mobile" || !layout.Narrow {
		t.Errorf("layout = %+v, want the narrow layout", layout)
	}
	if strings.Contains(out, "\n  ") {
		t.Error("--compact output is indented")
	}

	out, err = runCLI(t, "render", chart, "-f", "json", "-o", "-", "--width", "400", "--narrow", "false")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"strategy": "desktop"`) {
		t.Errorf("--narrow false ignored:\n%s", out)
	}
}

func TestRenderErrors(t *testing.T) {
	chart := writeChart(t, team()...)
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", chart, "-f", "gif"}},
		{"bad narrow", []string{"render", chart, "--narrow", "sometimes"}},
		{"stdout many", []string{"render", chart, "-f", "svg,json", "-o", "-"}},
		{"missing chart", []string{"render", filepath.Join(t.TempDir(), "nope.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("render succeeded")
			}
		})
	}
}

func TestRenderRecolorsLocalAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	asset := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 38 100"><path d="M0 0h38v100H0z" fill="#000"/></svg>`
	if err := os.WriteFile(filepath.Join(dir, "assets", "p.svg"), []byte(asset), 0o644); err != nil {
		t.Fatal(err)
	}
	chart := filepath.Join(dir, "team.json")
	data := `[{"name":"Ana","height":165,"color":"#e11d48","avatar":"assets/p.svg"},{"name":"Lost","height":170,"avatar":"assets/missing.svg"}]`
	if err := os.WriteFile(chart, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "render", chart, "-o", filepath.Join(dir, "out.svg"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "1 person assets could not be loaded") {
		t.Errorf("missing asset not reported:\n%s", out)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "out.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `fill="#e11d48"`) {
		t.Error("person asset was not recolored")
	}
	// a missing asset is drawn as a placeholder instead of failing the render
	if !strings.Contains(string(svg), "Lost") {
		t.Error("avatar with a missing asset was dropped")
	}
}
