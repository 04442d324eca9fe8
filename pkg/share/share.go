// Package share publishes avatar sets behind opaque share links.
//
// The boundary is a single JSON endpoint: the client POSTs
// {"data": "<serialized avatars>"} and receives {"success": true,
// "item_id": <id>}. The id may be a number or a string. A share link is the
// application origin followed by "?share=<id>".
//
// This package provides:
//   - [HTTPClient]: the client side of the boundary
//   - [Sharer]: the share action state (idle, in flight, succeeded, failed)
//     with link reuse for unchanged avatar sets
//   - [Handler]: a reference server for the boundary
//   - Stores for the server: memory, file, redis and mongo
package share

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
)

// DefaultTTL is how long a stored share item lives on the server.
const DefaultTTL = 30 * 24 * time.Hour

// ItemID identifies a stored share item. On the wire it may be a JSON
// number or a JSON string.
type ItemID string

// UnmarshalJSON accepts both number and string ids.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "item_id must be a number or string")
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseUint(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type createRequest struct {
	Data string `json:"data"`
}

type createResponse struct {
	Success bool   `json:"success"`
	ItemID  ItemID `json:"item_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Encode serializes avatars into the share payload.
func Encode(avatars []avatar.Avatar) (string, error) {
	if len(avatars) == 0 {
		return "", errors.New(errors.ErrCodeNothingToShare, "nothing to share")
	}
	b, err := json.Marshal(avatars)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode avatars")
	}
	return string(b), nil
}

// Decode parses a share payload. Invalid avatars are rejected.
func Decode(data string) ([]avatar.Avatar, error) {
	var avs []avatar.Avatar
	if err := json.Unmarshal([]byte(data), &avs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode share payload")
	}
	for i, a := range avs {
		if err := a.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAvatar, err, "avatar %d", i)
		}
	}
	return avs, nil
}

// Link builds the share link for id. The id is query-escaped.
func Link(origin string, id ItemID) string {
	return origin + "?share=" + url.QueryEscape(string(id))
}
