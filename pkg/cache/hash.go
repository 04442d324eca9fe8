package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key prefixes, one per entry kind.
const (
	prefixColorize = "colorize"
	prefixShare    = "share"
	prefixHTTP     = "http"
)

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// ColorizeKey identifies recolored markup for an asset and fill color.
	ColorizeKey(locator, fill string) string

	// ShareKey identifies the share link for a serialized avatar set.
	ShareKey(payload []byte) string

	// HTTPKey identifies a raw HTTP response body.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ColorizeKey returns "colorize:<locator>|<fill>".
func (DefaultKeyer) ColorizeKey(locator, fill string) string {
	return prefixColorize + ":" + locator + "|" + fill
}

// ShareKey returns "share:<sha256(payload)>".
func (DefaultKeyer) ShareKey(payload []byte) string {
	return prefixShare + ":" + Hash(payload)
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return prefixHTTP + ":" + namespace + ":" + key
}

// HashKey builds a key from a prefix and the hash of arbitrary JSON-encodable
// parts. The format is prefix:sha256(json(parts)).
func HashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

var _ Keyer = DefaultKeyer{}
