package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend (for example one Redis) without key collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ColorizeKey(locator, fill string) string {
	return k.prefix + k.inner.ColorizeKey(locator, fill)
}

func (k *ScopedKeyer) ShareKey(payload []byte) string {
	return k.prefix + k.inner.ShareKey(payload)
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
