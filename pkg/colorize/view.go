package colorize

import (
	"context"
	"sync"
)

// Status is the load state of a [View].
type Status int

const (
	Loading Status = iota
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "loading"
	}
}

// ViewState is a snapshot of a view.
type ViewState struct {
	Status Status
	Markup Markup
	Err    error
}

// View is one consumer's handle on a recolored asset.
//
// A view whose markup is already cached starts Loaded. Otherwise it starts
// Loading and a goroutine fetches the asset. Once Close has been called the
// result of that fetch is discarded and onUpdate is not invoked; the fetch
// itself runs to completion and still populates the shared cache.
type View struct {
	mu       sync.Mutex
	state    ViewState
	closed   bool
	onUpdate func(ViewState)
	done     chan struct{}
}

// Load opens a view for locator recolored with fill. onUpdate, if non-nil,
// is called once from the loading goroutine when the view leaves Loading.
func (z *Colorizer) Load(ctx context.Context, locator, fill string, onUpdate func(ViewState)) *View {
	v := &View{onUpdate: onUpdate, done: make(chan struct{})}

	if m, ok := z.lookup(ctx, z.keyer.ColorizeKey(locator, fill)); ok {
		v.state = ViewState{Status: Loaded, Markup: m}
		close(v.done)
		return v
	}

	go func() {
		defer close(v.done)
		m, err := z.Get(ctx, locator, fill)
		v.resolve(m, err)
	}()
	return v
}

func (v *View) resolve(m Markup, err error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if err != nil {
		v.state = ViewState{Status: Errored, Err: err}
	} else {
		v.state = ViewState{Status: Loaded, Markup: m}
	}
	st, fn := v.state, v.onUpdate
	v.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// State returns the current snapshot.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Close detaches the consumer. Subsequent results are dropped.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Done is closed once the underlying load has finished, whether or not its
// result was kept.
func (v *View) Done() <-chan struct{} { return v.done }
