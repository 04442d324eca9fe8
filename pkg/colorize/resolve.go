package colorize

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heightchart/pkg/avatar"
)

// DefaultResolveLimit caps concurrent fetches in [Colorizer.Resolve].
const DefaultResolveLimit = 4

// Assets maps avatar ids to their recolored markup.
type Assets map[string]Markup

// SVG returns the markup for id. ok is false when the asset is missing or
// failed to load.
func (a Assets) SVG(id string) (markup string, ok bool) {
	m, ok := a[id]
	return m.SVG, ok && m.SVG != ""
}

// WithAspects returns a copy of avs where each avatar without an explicit
// aspect takes the one measured from its asset.
func (a Assets) WithAspects(avs []avatar.Avatar) []avatar.Avatar {
	out := make([]avatar.Avatar, len(avs))
	for i, av := range avs {
		if m, ok := a[av.ID]; ok && av.Aspect == 0 && m.Aspect > 0 {
			av.Aspect = m.Aspect
		}
		out[i] = av
	}
	return out
}

// Resolve loads the assets of every person in avs that has a locator.
// Failures are not fatal: the avatar is left out of the result and its error
// is returned keyed by id, so callers draw a placeholder for it.
func (z *Colorizer) Resolve(ctx context.Context, avs []avatar.Avatar, limit int) (Assets, map[string]error) {
	if limit <= 0 {
		limit = DefaultResolveLimit
	}
	var (
		mu     sync.Mutex
		assets = make(Assets)
		failed = make(map[string]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, a := range avs {
		if !a.IsPerson() || a.Locator == "" {
			continue
		}
		g.Go(func() error {
			m, err := z.Get(gctx, a.Locator, a.Color)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[a.ID] = err
				return nil
			}
			assets[a.ID] = m
			return nil
		})
	}
	_ = g.Wait()
	return assets, failed
}
