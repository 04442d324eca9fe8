package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
)

// ReadJSON decodes a chart from r. It accepts the object form and a bare
// avatar array. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Chart, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read chart")
	}

	var c Chart
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &c.Avatars); err != nil {
			return Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode avatars")
		}
	} else {
		var f file
		if err := json.Unmarshal(data, &f); err != nil {
			return Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart")
		}
		if f.Version > Version {
			return Chart{}, errors.New(errors.ErrCodeUnsupported, "chart version %d is newer than %d", f.Version, Version)
		}
		c = Chart{Title: f.Title, Zoom: f.Zoom, Avatars: f.Avatars}
	}

	for i, a := range c.Avatars {
		if a.Kind == "" {
			a.Kind = avatar.KindPerson
			c.Avatars[i] = a
		}
		if err := a.Validate(); err != nil {
			return Chart{}, errors.Wrap(errors.ErrCodeInvalidAvatar, err, "avatar %d (%s)", i, a.DisplayName())
		}
	}
	return c, nil
}

// ImportJSON reads the chart file at path.
func ImportJSON(path string) (Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Chart{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Chart{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
