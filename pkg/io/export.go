package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
)

// Version is the chart file version written by [WriteJSON].
const Version = 1

// Chart is the content of a chart file.
type Chart struct {
	Title   string
	Zoom    float64 // 0 when the file does not set one
	Avatars []avatar.Avatar
}

type file struct {
	Version int             `json:"version"`
	Title   string          `json:"title,omitempty"`
	Zoom    float64         `json:"zoom,omitempty"`
	Avatars []avatar.Avatar `json:"avatars"`
}

// WriteJSON encodes c as an indented chart file.
func WriteJSON(c Chart, w io.Writer) error {
	out := file{Version: Version, Title: c.Title, Zoom: c.Zoom, Avatars: c.Avatars}
	if out.Avatars == nil {
		out.Avatars = []avatar.Avatar{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode chart")
	}
	return nil
}

// ExportJSON writes c to path, replacing any existing file.
func ExportJSON(c Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := WriteJSON(c, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}
