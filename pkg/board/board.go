// Package board composes the avatar store, the scale generator and the
// compression engines into a laid-out height chart.
//
// A [Board] subscribes to a [store.Store] and keeps a private copy of the
// latest state. It owns two strategies, desktop and mobile, and routes
// every trigger (avatar changes, container resizes, viewport flips) to the
// active one. [Board.Layout] turns the current state into a [Layout] value
// that sinks render without touching the board again.
//
// # Locking
//
// The board never holds its lock while calling into the store, because the
// store delivers notifications synchronously and the board's listener takes
// the lock. Strategies are invoked with the lock held; the mobile engine's
// measure callback runs from the scheduler and takes the lock itself.
package board

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/compress"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/observability"
	"github.com/matzehuels/heightchart/pkg/store"
)

// Board is a live height chart bound to a store. It is safe for concurrent
// use.
type Board struct {
	mu     sync.Mutex
	store  *store.Store
	cfg    Config
	logger *log.Logger

	width, height float64
	narrow        bool
	resizePending bool
	state         store.State

	desktop Strategy
	mobile  Strategy
	active  Strategy

	debounce    *compress.Debouncer
	unsubscribe func()

	listeners    map[int]func(Layout)
	nextListener int
	closed       bool
}

// Option configures a Board.
type Option func(*options)

type options struct {
	sched  compress.Scheduler
	logger *log.Logger
	narrow *bool
}

// WithScheduler sets the scheduler that drives the mobile convergence loop.
// Defaults to a [compress.FrameScheduler].
func WithScheduler(s compress.Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithLogger sets the board logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNarrow fixes the initial viewport class instead of deriving it from
// the configured width.
func WithNarrow(narrow bool) Option {
	return func(o *options) { o.narrow = &narrow }
}

// New binds a board to st. The configuration is completed with defaults.
func New(st *store.Store, cfg Config, opts ...Option) *Board {
	cfg = cfg.WithDefaults()
	o := options{sched: compress.FrameScheduler{}, logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	b := &Board{
		store:     st,
		cfg:       cfg,
		logger:    o.logger,
		width:     cfg.Width,
		height:    cfg.Height,
		state:     st.State(),
		debounce:  compress.NewDebouncer(cfg.Debounce),
		listeners: make(map[int]func(Layout)),
	}
	if o.narrow != nil {
		b.narrow = *o.narrow
	} else {
		b.narrow = IsNarrow(cfg.Width, cfg.Breakpoint)
	}

	b.desktop = newDesktop(cfg.Desktop, b.naturalLocked)
	b.mobile = newMobile(cfg.Mobile, o.sched, b.measureMobile, b.compressionChanged, o.logger)

	b.mu.Lock()
	b.active = b.pick()
	b.active.Activate()
	b.mu.Unlock()

	b.unsubscribe = st.Subscribe(b.storeChanged)
	// Catch changes made between the first snapshot and subscribing.
	b.storeChanged(st.State())
	return b
}

// Store returns the underlying store.
func (b *Board) Store() *store.Store { return b.store }

// Config returns the completed configuration.
func (b *Board) Config() Config { return b.cfg }

// =============================================================================
// Triggers
// =============================================================================

func (b *Board) storeChanged(st store.State) {
	b.mu.Lock()
	if b.closed || st.Version <= b.state.Version {
		b.mu.Unlock()
		return
	}
	prev := b.state
	b.state = st
	if !slices.Equal(prev.Avatars, st.Avatars) {
		b.active.AvatarsChanged(len(prev.Avatars) != len(st.Avatars))
	}
	b.mu.Unlock()
	b.notify()
}

func (b *Board) compressionChanged(float64) { b.notify() }

// Resize sets the container size. Layout positions follow immediately; the
// compression is re-evaluated once the resize burst settles.
func (b *Board) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	b.mu.Lock()
	if b.closed || (width == b.width && height == b.height) {
		b.mu.Unlock()
		return
	}
	b.width, b.height = width, height
	if b.cfg.AutoNarrow {
		b.switchLocked(IsNarrow(width, b.cfg.Breakpoint))
	}
	b.resizePending = true
	b.mu.Unlock()

	b.debounce.Trigger(b.Settle)
	b.notify()
}

// Settle runs a pending resize re-evaluation now instead of waiting for the
// debounce delay.
func (b *Board) Settle() {
	b.mu.Lock()
	if b.closed || !b.resizePending {
		b.mu.Unlock()
		return
	}
	b.resizePending = false
	b.debounce.Stop()
	changed := b.active.Resized()
	b.mu.Unlock()
	if changed {
		b.notify()
	}
}

// SetNarrow switches the viewport class. The outgoing strategy's loop is
// cancelled and the incoming one re-evaluates.
func (b *Board) SetNarrow(narrow bool) {
	b.mu.Lock()
	if b.closed || narrow == b.narrow {
		b.mu.Unlock()
		return
	}
	b.switchLocked(narrow)
	b.mu.Unlock()
	b.notify()
}

func (b *Board) switchLocked(narrow bool) {
	if narrow == b.narrow {
		return
	}
	b.active.Deactivate()
	b.narrow = narrow
	b.active = b.pick()
	b.logger.Debug("strategy switched", "strategy", b.active.Name(), "width", b.width)
	b.active.Activate()
}

func (b *Board) pick() Strategy {
	if b.narrow {
		return b.mobile
	}
	return b.desktop
}

// Refresh re-evaluates the active strategy as if the container had resized.
func (b *Board) Refresh() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.resizePending = false
	changed := b.active.Resized()
	b.mu.Unlock()
	if changed {
		b.notify()
	}
}

// =============================================================================
// Measurement
// =============================================================================

func (b *Board) geometryLocked(m Metrics) geometry {
	return geometry{cfg: b.cfg, metrics: m, width: b.width, height: b.height}
}

// naturalLocked measures the desktop row at Min. Available is the raw
// container width; the continuous engine subtracts its own margin.
func (b *Board) naturalLocked() compress.Measurement {
	m := b.desktop.Metrics()
	g := b.geometryLocked(m)
	return compress.Measurement{
		Count:     len(b.state.Avatars),
		Total:     g.rowWidth(b.state.Avatars, m.Bounds.Min, 1),
		Available: b.width,
	}
}

func (b *Board) measureMobile(c float64) compress.Measurement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.geometryLocked(b.mobile.Metrics()).measure(b.state.Avatars, c)
}

// =============================================================================
// Derived values
// =============================================================================

// Layout computes the board as it currently stands.
func (b *Board) Layout() Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layoutLocked()
}

func (b *Board) layoutLocked() Layout {
	start := time.Now()
	g := b.geometryLocked(b.active.Metrics())
	l := g.layout(b.state.Avatars, b.active.Compression(), b.state.Zoom)
	l.Strategy = b.active.Name()
	l.Mode = string(b.active.Mode())
	l.Narrow = b.narrow
	l.CanUndo = b.state.CanUndo
	l.CanRedo = b.state.CanRedo
	observability.Board().OnLayout(context.Background(), len(l.Visuals), time.Since(start))
	return l
}

// Tallest returns the reference height: the tallest avatar or the baseline.
func (b *Board) Tallest() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.geometryLocked(b.active.Metrics()).tallest(b.state.Avatars)
}

// BoardHeight returns the centimetres the full board represents.
func (b *Board) BoardHeight() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.geometryLocked(b.active.Metrics()).tallest(b.state.Avatars)
	return BoardHeight(t, b.cfg.ScalingFactor, b.active.Compression())
}

// Compression returns the active strategy's multiplier.
func (b *Board) Compression() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active.Compression()
}

// Strategy returns the active strategy's name.
func (b *Board) Strategy() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active.Name()
}

// Narrow reports the viewport class.
func (b *Board) Narrow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.narrow
}

// =============================================================================
// Actions
// =============================================================================

// Reorder applies a drag-reorder given the new id order.
func (b *Board) Reorder(ids []string) error {
	return b.store.ReorderIDs(ids)
}

// Drop moves the avatar with id to index, as at the end of a drag.
func (b *Board) Drop(id string, index int) bool {
	return b.store.Move(id, index)
}

// Remove deletes an avatar.
func (b *Board) Remove(id string) bool {
	return b.store.Remove(id)
}

// Edit updates a person. Objects carry no edit control and are refused.
func (b *Board) Edit(id string, patch avatar.Patch) error {
	a, ok := b.store.Get(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "avatar %q not found", id)
	}
	if !a.IsPerson() {
		return errors.New(errors.ErrCodeUnsupported, "avatar %q is an object and cannot be edited", id)
	}
	patched := patch.Apply(a)
	patched.ID = id
	if err := patched.Validate(); err != nil {
		return err
	}
	if patched == a {
		// nothing changes; no history entry
		return nil
	}
	if !b.store.Update(id, patch) {
		return errors.New(errors.ErrCodeInvalidAvatar, "edit of %q rejected", id)
	}
	return nil
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe registers fn to receive the layout after every change that
// affects it. The returned function removes the subscription.
func (b *Board) Subscribe(fn func(Layout)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextListener
	b.nextListener++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Board) notify() {
	b.mu.Lock()
	if b.closed || len(b.listeners) == 0 {
		b.mu.Unlock()
		return
	}
	l := b.layoutLocked()
	fns := make([]func(Layout), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

// Close unsubscribes from the store and cancels pending work. The board
// keeps answering Layout with its last state.
func (b *Board) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.debounce.Stop()
	b.desktop.Deactivate()
	b.mobile.Deactivate()
	unsub := b.unsubscribe
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Converge lays st out once on a private board. The narrow layout's
// convergence loop runs on a manual scheduler for at most frames frames
// before the layout is taken, so the result does not depend on wall time.
func Converge(st *store.Store, cfg Config, frames int, opts ...Option) Layout {
	sched := compress.NewManualScheduler()
	b := New(st, cfg, append(opts, WithScheduler(sched))...)
	defer b.Close()
	sched.RunUntilIdle(frames)
	return b.Layout()
}
