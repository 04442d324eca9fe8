package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{"unset falls back", Info{"dev", "none", "unknown"}, Info{"v0.3.1", "abc123", "2026-01-02T03:04:05Z"}},
		{"ldflags win", Info{"v1.0.0", "deadbeef", "today"}, Info{"v1.0.0", "deadbeef", "today"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fill(tt.in, bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}

	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := fill(Info{"dev", "none", "unknown"}, devel); got.Version != "dev" {
		t.Errorf("(devel) replaced the version: %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") || !strings.Contains(String(), "commit: ") {
		t.Errorf("Template() = %q, String() = %q", Template(), String())
	}
}
