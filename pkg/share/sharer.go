package share

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/store"
)

// Phase is the state of the share action.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status is a snapshot of a [Sharer].
type Status struct {
	Phase Phase
	Link  string
	Err   error
}

// Sharer issues share links for avatar sets.
//
// One request is made per explicit Share call. A link obtained for an
// avatar set is reused for as long as the set is unchanged; Reset (or any
// change seen through Bind) invalidates it. Concurrent Share calls for the
// same set share one request.
type Sharer struct {
	client Client
	origin string
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	group  singleflight.Group

	mu     sync.Mutex
	status Status
	key    string
	gen    uint64
}

// SharerOption configures a Sharer.
type SharerOption func(*Sharer)

// WithLinkCache persists issued item ids so an unchanged set is reused
// across processes. Entries live for [cache.ShareLinkTTL].
func WithLinkCache(c cache.Cache) SharerOption {
	return func(s *Sharer) { s.cache = c }
}

// WithSharerLogger sets the logger.
func WithSharerLogger(l *log.Logger) SharerOption {
	return func(s *Sharer) { s.logger = l }
}

// NewSharer returns an idle sharer building links on origin.
func NewSharer(client Client, origin string, opts ...SharerOption) *Sharer {
	s := &Sharer{
		client: client,
		origin: origin,
		cache:  cache.NullCache{},
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current state.
func (s *Sharer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Share returns a link for avatars. An empty set fails with
// NOTHING_TO_SHARE and leaves the state untouched.
func (s *Sharer) Share(ctx context.Context, avatars []avatar.Avatar) (string, error) {
	data, err := Encode(avatars)
	if err != nil {
		return "", err
	}
	key := s.keyer.ShareKey([]byte(data))

	s.mu.Lock()
	if s.status.Phase == Succeeded && s.key == key {
		link := s.status.Link
		s.mu.Unlock()
		return link, nil
	}
	s.mu.Unlock()

	if b, hit, _ := s.cache.Get(ctx, key); hit {
		link := Link(s.origin, ItemID(b))
		s.settle(s.generation(), key, Status{Phase: Succeeded, Link: link})
		return link, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		gen := s.begin()
		id, err := s.client.Create(ctx, data)
		if err != nil {
			s.logger.Warn("share failed", "err", err)
			s.settle(gen, key, Status{Phase: Failed, Err: err})
			return "", err
		}
		link := Link(s.origin, id)
		if err := s.cache.Set(ctx, key, []byte(id), cache.ShareLinkTTL); err != nil {
			s.logger.Debug("share link not cached", "err", err)
		}
		s.logger.Debug("share link issued", "id", id, "avatars", len(avatars))
		s.settle(gen, key, Status{Phase: Succeeded, Link: link})
		return link, nil
	})
	if err != nil {
		if !errors.Is(err, errors.ErrCodeShareFailed) && !errors.Is(err, errors.ErrCodeTimeout) {
			err = errors.Wrap(errors.ErrCodeShareFailed, err, "share")
		}
		return "", err
	}
	return v.(string), nil
}

func (s *Sharer) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Sharer) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Phase: InFlight}
	return s.gen
}

// settle records a result unless the avatar set changed while it was
// pending.
func (s *Sharer) settle(gen uint64, key string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.status = st
	s.key = key
	if st.Phase != Succeeded {
		s.key = ""
	}
}

// Reset forgets the current link. A request in flight still completes
// but its result no longer updates the state.
func (s *Sharer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = Status{}
	s.key = ""
}

// Bind resets the sharer whenever the avatars in st change. Zoom and
// history cursor moves that leave the avatars equal are ignored.
func (s *Sharer) Bind(st *store.Store) (unbind func()) {
	var mu sync.Mutex
	last := st.Avatars()
	return st.Subscribe(func(state store.State) {
		mu.Lock()
		changed := !slices.Equal(last, state.Avatars)
		last = state.Avatars
		mu.Unlock()
		if changed {
			s.Reset()
		}
	})
}
