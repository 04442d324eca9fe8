package sink

import (
	"encoding/json"

	"github.com/matzehuels/heightchart/pkg/board"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact   bool
	shareLink string
}

// WithJSONCompact drops indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONShareLink records a share link for the exported avatar set.
func WithJSONShareLink(link string) JSONOption {
	return func(r *jsonRenderer) { r.shareLink = link }
}

type jsonOutput struct {
	board.Layout
	ShareLink string `json:"share_link,omitempty"`
}

// RenderJSON exports the layout as JSON. It does not modify l and is safe
// to call concurrently.
func RenderJSON(l board.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Layout: l, ShareLink: r.shareLink}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
