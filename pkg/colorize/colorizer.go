// Package colorize fetches vector avatar assets, recolors their paths and
// memoizes the result by (locator, fill).
//
// [Colorizer.Get] is safe to call repeatedly and concurrently. Identical
// in-flight requests share one fetch; completed results are kept in a
// [cache.Cache] under [cache.Keyer.ColorizeKey]. Two fetches for the same key
// that race produce equivalent markup, so whichever write lands last wins.
//
// [View] wraps one avatar's asset for a consumer that renders it: it loads
// asynchronously and drops a late result once the consumer has closed it.
package colorize

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/observability"
)

const cacheKeyType = "colorize"

// Colorizer turns (locator, fill) into recolored markup.
type Colorizer struct {
	fetcher Fetcher
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	logger  *log.Logger
	group   singleflight.Group
}

// Option configures a Colorizer.
type Option func(*Colorizer)

// WithCache sets the result cache (a MemoryCache by default).
func WithCache(c cache.Cache) Option {
	return func(z *Colorizer) {
		if c != nil {
			z.cache = c
		}
	}
}

// WithKeyer sets the key builder.
func WithKeyer(k cache.Keyer) Option {
	return func(z *Colorizer) {
		if k != nil {
			z.keyer = k
		}
	}
}

// WithTTL sets how long results are cached.
func WithTTL(ttl time.Duration) Option {
	return func(z *Colorizer) { z.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(z *Colorizer) {
		if l != nil {
			z.logger = l
		}
	}
}

// New creates a colorizer over fetcher.
func New(fetcher Fetcher, opts ...Option) *Colorizer {
	z := &Colorizer{
		fetcher: fetcher,
		cache:   cache.NewMemoryCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.ColorizeTTL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Get returns the markup for locator recolored with fill.
func (z *Colorizer) Get(ctx context.Context, locator, fill string) (Markup, error) {
	if locator == "" {
		return Markup{}, errors.New(errors.ErrCodeInvalidInput, "empty asset locator")
	}
	key := z.keyer.ColorizeKey(locator, fill)
	hooks := observability.Cache()

	if m, ok := z.lookup(ctx, key); ok {
		hooks.OnCacheHit(ctx, cacheKeyType)
		return m, nil
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	v, err, shared := z.group.Do(key, func() (any, error) {
		raw, err := z.fetcher.Fetch(ctx, locator)
		if err != nil {
			return Markup{}, err
		}
		m, err := Recolor(raw, fill)
		if err != nil {
			return Markup{}, err
		}
		z.store(ctx, key, m)
		return m, nil
	})
	if err != nil {
		z.logger.Debug("colorize failed", "locator", locator, "fill", fill, "err", err)
		return Markup{}, err
	}
	if shared {
		z.logger.Debug("colorize shared in-flight fetch", "locator", locator)
	}
	return v.(Markup), nil
}

// Forget removes a cached result.
func (z *Colorizer) Forget(ctx context.Context, locator, fill string) error {
	return z.cache.Delete(ctx, z.keyer.ColorizeKey(locator, fill))
}

func (z *Colorizer) lookup(ctx context.Context, key string) (Markup, bool) {
	data, hit, err := z.cache.Get(ctx, key)
	if err != nil {
		z.logger.Warn("colorize cache read failed", "key", key, "err", err)
		return Markup{}, false
	}
	if !hit {
		return Markup{}, false
	}
	var m Markup
	if err := json.Unmarshal(data, &m); err != nil || m.SVG == "" {
		_ = z.cache.Delete(ctx, key)
		return Markup{}, false
	}
	return m, true
}

func (z *Colorizer) store(ctx context.Context, key string, m Markup) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := z.cache.Set(ctx, key, data, z.ttl); err != nil {
		z.logger.Warn("colorize cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}
