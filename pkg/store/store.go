// Package store owns the ordered avatar collection behind a height chart,
// together with its bounded undo/redo history and the zoom level.
//
// # History
//
// History is an arena of immutable snapshots plus a cursor. The snapshot at
// the cursor is the visible collection. Every mutation (add, remove, update,
// reorder, clear) builds a fresh slice, drops any redo-able future and
// appends the new snapshot; when the arena exceeds its depth the oldest
// snapshot is evicted. Undo and redo only move the cursor.
//
// # Reactivity
//
// Consumers register with [Store.Subscribe] and receive a [State] value after
// every change, including zoom changes and cursor moves. Listeners run
// after the store lock is released, so they may call back into the store.
//
// # Errors
//
// Malformed input and unknown ids are silent no-ops reported through the
// boolean results. A reorder that is not a permutation of the current ids is
// a caller bug and fails loudly with an INVALID_PERMUTATION error.
package store

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/observability"
)

const (
	// DefaultHistoryDepth is the maximum number of snapshots kept, including
	// the initial one.
	DefaultHistoryDepth = 50

	// DefaultZoomMin and DefaultZoomMax bound the zoom level.
	DefaultZoomMin = 0.5
	DefaultZoomMax = 3.0

	// ZoomStep is the increment used by ZoomIn and ZoomOut.
	ZoomStep = 0.1
)

// State is a point-in-time view of the store. The Avatars slice is a copy
// owned by the receiver.
type State struct {
	Avatars []avatar.Avatar
	Zoom    float64
	CanUndo bool
	CanRedo bool
	Cursor  int    // index of the visible snapshot in the history arena
	Depth   int    // number of snapshots in the history arena
	Version uint64 // increases on every change
}

// Store is the single source of truth for the chart's collection state.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	history [][]avatar.Avatar
	cursor  int
	depth   int
	zoom    float64
	zoomMin float64
	zoomMax float64
	version uint64
	issued  map[string]struct{} // every id ever handed out
	newID   func() string
	logger  *log.Logger

	listeners    map[int]func(State)
	nextListener int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryDepth sets the maximum number of snapshots. Values below 2 are
// raised to 2 so at least one step can be undone.
func WithHistoryDepth(n int) Option {
	return func(s *Store) { s.depth = max(2, n) }
}

// WithZoomRange sets the allowed zoom range. Invalid ranges are ignored.
func WithZoomRange(lo, hi float64) Option {
	return func(s *Store) {
		if lo > 0 && hi >= lo {
			s.zoomMin, s.zoomMax = lo, hi
		}
	}
}

// WithIDFunc replaces the id generator (uuid by default).
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used for rejected operations.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInitial seeds the base snapshot. Invalid avatars are dropped and
// missing or duplicate ids are replaced. The base snapshot cannot be undone.
func WithInitial(avatars []avatar.Avatar) Option {
	return func(s *Store) {
		s.history[0] = avatars
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		history:   [][]avatar.Avatar{nil},
		depth:     DefaultHistoryDepth,
		zoom:      1,
		zoomMin:   DefaultZoomMin,
		zoomMax:   DefaultZoomMax,
		issued:    make(map[string]struct{}),
		newID:     uuid.NewString,
		logger:    log.Default(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history[0] = s.sanitize(s.history[0])
	s.zoom = clamp(s.zoom, s.zoomMin, s.zoomMax)
	return s
}

// sanitize keeps valid avatars and guarantees unique, non-empty ids.
func (s *Store) sanitize(list []avatar.Avatar) []avatar.Avatar {
	out := make([]avatar.Avatar, 0, len(list))
	seen := s.issued
	for _, a := range list {
		if err := a.Validate(); err != nil {
			s.logger.Warn("dropping invalid avatar", "id", a.ID, "err", err)
			continue
		}
		if _, dup := seen[a.ID]; a.ID == "" || dup {
			a.ID = s.freshID(seen)
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// freshID returns a non-empty id not present in seen.
func (s *Store) freshID(seen map[string]struct{}) string {
	for {
		id := s.newID()
		if _, taken := seen[id]; !taken && id != "" {
			return id
		}
	}
}

// =============================================================================
// Reads
// =============================================================================

// Avatars returns a copy of the visible collection in order.
func (s *Store) Avatars() []avatar.Avatar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.current())
}

// Get returns the avatar with the given id.
func (s *Store) Get(id string) (avatar.Avatar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.current(), id); i >= 0 {
		return s.current()[i], true
	}
	return avatar.Avatar{}, false
}

// Len returns the number of visible avatars.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current())
}

// CanUndo reports whether an older snapshot exists.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether a newer snapshot exists.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.history)-1
}

// Zoom returns the current zoom level.
func (s *Store) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// State returns a full snapshot of the store.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{
		Avatars: slices.Clone(s.current()),
		Zoom:    s.zoom,
		CanUndo: s.cursor > 0,
		CanRedo: s.cursor < len(s.history)-1,
		Cursor:  s.cursor,
		Depth:   len(s.history),
		Version: s.version,
	}
}

func (s *Store) current() []avatar.Avatar { return s.history[s.cursor] }

// =============================================================================
// Mutations
// =============================================================================

// Add appends a to the end of the collection and returns its id.
//
// An empty id, or one the store has ever handed out (including ids of
// removed avatars), is replaced with a fresh one. A malformed
// avatar (for example a non-positive height) is ignored: ok is false and
// neither the collection nor the history changes.
func (s *Store) Add(a avatar.Avatar) (id string, ok bool) {
	if err := a.Validate(); err != nil {
		s.reject("add", err)
		return "", false
	}

	s.mu.Lock()
	cur := s.current()
	if _, used := s.issued[a.ID]; a.ID == "" || used {
		a.ID = s.freshID(s.issued)
	}
	s.issued[a.ID] = struct{}{}
	next := make([]avatar.Avatar, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, a)
	st := s.commitLocked(next)
	s.mu.Unlock()

	s.mutated("add", st)
	return a.ID, true
}

// Remove deletes the avatar with the given id. It reports false, without
// touching history, when no such avatar exists.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	cur := s.current()
	i := indexOf(cur, id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("remove: avatar not found", "id", id)
		return false
	}
	next := make([]avatar.Avatar, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	st := s.commitLocked(next)
	s.mu.Unlock()

	s.mutated("remove", st)
	return true
}

// Update applies patch to the avatar with the given id, keeping its id and
// position. It reports false when the id is unknown, the patch is empty, or
// the patched avatar would be invalid.
func (s *Store) Update(id string, patch avatar.Patch) bool {
	if patch.IsEmpty() {
		return false
	}

	s.mu.Lock()
	cur := s.current()
	i := indexOf(cur, id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("update: avatar not found", "id", id)
		return false
	}
	patched := patch.Apply(cur[i])
	patched.ID = id
	if err := patched.Validate(); err != nil {
		s.mu.Unlock()
		s.reject("update", err)
		return false
	}
	if patched == cur[i] {
		s.mu.Unlock()
		return false
	}
	next := slices.Clone(cur)
	next[i] = patched
	st := s.commitLocked(next)
	s.mu.Unlock()

	s.mutated("update", st)
	return true
}

// Reorder replaces the order of the collection with the order of seq.
//
// seq must contain exactly the current ids (same multiset). Only the order
// is taken from seq; avatar values come from the current snapshot. A
// non-permutation is rejected with an INVALID_PERMUTATION error and leaves
// the store unchanged. An order identical to the current one is a no-op.
func (s *Store) Reorder(seq []avatar.Avatar) error {
	return s.ReorderIDs(avatar.IDs(seq))
}

// ReorderIDs is [Store.Reorder] expressed with ids.
func (s *Store) ReorderIDs(ids []string) error {
	s.mu.Lock()
	cur := s.current()
	if err := checkPermutation(cur, ids); err != nil {
		s.mu.Unlock()
		s.reject("reorder", err)
		s.logger.Error("reorder rejected", "err", err)
		return err
	}
	if slices.Equal(avatar.IDs(cur), ids) {
		s.mu.Unlock()
		return nil
	}
	byID := make(map[string]avatar.Avatar, len(cur))
	for _, a := range cur {
		byID[a.ID] = a
	}
	next := make([]avatar.Avatar, len(ids))
	for i, id := range ids {
		next[i] = byID[id]
	}
	st := s.commitLocked(next)
	s.mu.Unlock()

	s.mutated("reorder", st)
	return nil
}

// Move places the avatar with the given id at index (clamped to the
// collection bounds). It reports false when the id is unknown or the avatar
// is already at that index.
func (s *Store) Move(id string, index int) bool {
	s.mu.Lock()
	cur := s.current()
	from := indexOf(cur, id)
	if from < 0 {
		s.mu.Unlock()
		return false
	}
	to := max(0, min(index, len(cur)-1))
	if from == to {
		s.mu.Unlock()
		return false
	}
	next := slices.Clone(cur)
	moved := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, moved)
	st := s.commitLocked(next)
	s.mu.Unlock()

	s.mutated("reorder", st)
	return true
}

// Clear empties the collection. It always records a history entry, so even
// clearing an empty board can be undone.
func (s *Store) Clear() {
	s.mu.Lock()
	st := s.commitLocked([]avatar.Avatar{})
	s.mu.Unlock()

	s.mutated("clear", st)
}

// commitLocked truncates the redo future, appends next and evicts the
// oldest snapshots beyond the depth. Callers hold s.mu.
func (s *Store) commitLocked(next []avatar.Avatar) State {
	s.history = append(s.history[:s.cursor+1], next)
	if over := len(s.history) - s.depth; over > 0 {
		s.history = slices.Clone(s.history[over:])
	}
	s.cursor = len(s.history) - 1
	s.version++
	return s.stateLocked()
}

// =============================================================================
// History
// =============================================================================

// Undo moves the cursor back one snapshot. It reports false when already at
// the oldest snapshot.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if s.cursor == 0 {
		s.mu.Unlock()
		s.logger.Debug("cannot undo")
		return false
	}
	s.cursor--
	s.version++
	st := s.stateLocked()
	s.mu.Unlock()

	observability.Store().OnHistory(context.Background(), "undo", st.Cursor, st.Depth)
	s.notify(st)
	return true
}

// Redo moves the cursor forward one snapshot. It reports false when already
// at the newest snapshot.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if s.cursor >= len(s.history)-1 {
		s.mu.Unlock()
		s.logger.Debug("cannot redo")
		return false
	}
	s.cursor++
	s.version++
	st := s.stateLocked()
	s.mu.Unlock()

	observability.Store().OnHistory(context.Background(), "redo", st.Cursor, st.Depth)
	s.notify(st)
	return true
}

// =============================================================================
// Zoom
// =============================================================================

// SetZoom clamps level to the allowed range, stores it and returns the
// stored value. Zoom changes never touch history.
func (s *Store) SetZoom(level float64) float64 {
	s.mu.Lock()
	if math.IsNaN(level) {
		level = s.zoom
	}
	level = clamp(level, s.zoomMin, s.zoomMax)
	if level == s.zoom {
		s.mu.Unlock()
		return level
	}
	s.zoom = level
	s.version++
	st := s.stateLocked()
	s.mu.Unlock()

	s.notify(st)
	return level
}

// ZoomIn raises the zoom by one step.
func (s *Store) ZoomIn() float64 { return s.SetZoom(roundStep(s.Zoom() + ZoomStep)) }

// ZoomOut lowers the zoom by one step.
func (s *Store) ZoomOut() float64 { return s.SetZoom(roundStep(s.Zoom() - ZoomStep)) }

// ZoomRange returns the allowed zoom bounds.
func (s *Store) ZoomRange() (lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoomMin, s.zoomMax
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe registers fn to receive the state after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify(st State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) mutated(op string, st State) {
	observability.Store().OnMutation(context.Background(), op, len(st.Avatars))
	s.logger.Debug("collection changed", "op", op, "size", len(st.Avatars), "depth", st.Depth)
	s.notify(st)
}

func (s *Store) reject(op string, err error) {
	observability.Store().OnRejected(context.Background(), op, err)
	s.logger.Debug("mutation rejected", "op", op, "err", err)
}

// =============================================================================
// Helpers
// =============================================================================

func checkPermutation(cur []avatar.Avatar, ids []string) error {
	if len(ids) != len(cur) {
		return errors.New(errors.ErrCodeInvalidPermutation,
			"reorder has %d avatars, collection has %d", len(ids), len(cur))
	}
	counts := make(map[string]int, len(cur))
	for _, a := range cur {
		counts[a.ID]++
	}
	for _, id := range ids {
		if counts[id] == 0 {
			return errors.New(errors.ErrCodeInvalidPermutation,
				"reorder references unknown or repeated id %q", id)
		}
		counts[id]--
	}
	return nil
}

func indexOf(list []avatar.Avatar, id string) int {
	return slices.IndexFunc(list, func(a avatar.Avatar) bool { return a.ID == id })
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundStep(v float64) float64 {
	return math.Round(v*10) / 10
}
