package store

import (
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/errors"
)

func newTestStore(opts ...Option) *Store {
	n := 0
	base := []Option{
		WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithLogger(log.New(io.Discard)),
	}
	return New(append(base, opts...)...)
}

func person(name string, h float64) avatar.Avatar {
	return avatar.Avatar{Kind: avatar.KindPerson, Name: name, Height: h, Color: "#000"}
}

func TestAddAssignsIDsAndAppends(t *testing.T) {
	s := newTestStore()

	id1, ok := s.Add(person("a", 150))
	if !ok || id1 != "id-1" {
		t.Fatalf("Add() = %q, %v", id1, ok)
	}
	id2, _ := s.Add(person("b", 180))

	got := avatar.IDs(s.Avatars())
	if !slices.Equal(got, []string{id1, id2}) {
		t.Errorf("order = %v", got)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Errorf("CanUndo=%v CanRedo=%v after adds", s.CanUndo(), s.CanRedo())
	}
}

func TestAddReplacesDuplicateID(t *testing.T) {
	s := newTestStore()
	a := person("a", 150)
	a.ID = "fixed"
	s.Add(a)
	id, ok := s.Add(a)

	if !ok || id == "fixed" {
		t.Errorf("duplicate id should be replaced, got %q", id)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestAddNeverReusesRemovedID(t *testing.T) {
	s := newTestStore(WithInitial([]avatar.Avatar{{ID: "seed", Kind: avatar.KindObject, Name: "door", Height: 203}}))
	a := person("a", 150)
	a.ID = "x"

	if id, _ := s.Add(a); id != "x" {
		t.Fatalf("first Add() = %q, want the supplied id", id)
	}
	s.Remove("x")
	s.Remove("seed")

	for _, old := range []string{"x", "seed"} {
		b := person("b", 160)
		b.ID = old
		id, ok := s.Add(b)
		if !ok || id == old {
			t.Errorf("re-adding %q returned id %q", old, id)
		}
	}

	// generated ids skip every id already handed out
	s.Add(person("c", 170))
	ids := map[string]bool{}
	for _, a := range s.Avatars() {
		if ids[a.ID] || a.ID == "x" || a.ID == "seed" {
			t.Errorf("id %q reused", a.ID)
		}
		ids[a.ID] = true
	}
}

func TestAddRejectsMalformed(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	before := s.State()

	if _, ok := s.Add(person("neg", -5)); ok {
		t.Fatal("Add() with negative height should be rejected")
	}
	if _, ok := s.Add(person("zero", 0)); ok {
		t.Fatal("Add() with zero height should be rejected")
	}

	after := s.State()
	if len(after.Avatars) != len(before.Avatars) {
		t.Errorf("length changed: %d -> %d", len(before.Avatars), len(after.Avatars))
	}
	if after.Depth != before.Depth {
		t.Errorf("history depth changed: %d -> %d", before.Depth, after.Depth)
	}
	if after.Version != before.Version {
		t.Error("version changed on rejected add")
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore()
	id, _ := s.Add(person("a", 150))
	s.Add(person("b", 160))
	depth := s.State().Depth

	if s.Remove("missing") {
		t.Error("Remove() of unknown id should report false")
	}
	if s.State().Depth != depth {
		t.Error("Remove() of unknown id should not touch history")
	}
	if !s.Remove(id) {
		t.Fatal("Remove() should succeed")
	}
	if s.Len() != 1 || s.State().Depth != depth+1 {
		t.Errorf("Len=%d Depth=%d", s.Len(), s.State().Depth)
	}
}

func TestUpdatePreservesIDAndPosition(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	id, _ := s.Add(person("b", 160))
	s.Add(person("c", 170))

	name := "bee"
	h := 165.0
	if !s.Update(id, avatar.Patch{Name: &name, Height: &h}) {
		t.Fatal("Update() should succeed")
	}

	list := s.Avatars()
	if list[1].ID != id || list[1].Name != "bee" || list[1].Height != 165 {
		t.Errorf("updated avatar = %+v", list[1])
	}

	bad := -1.0
	if s.Update(id, avatar.Patch{Height: &bad}) {
		t.Error("Update() producing an invalid avatar should be rejected")
	}
	if s.Update("missing", avatar.Patch{Name: &name}) {
		t.Error("Update() of unknown id should report false")
	}
	if s.Update(id, avatar.Patch{}) {
		t.Error("empty patch should be a no-op")
	}
}

func TestReorderValidPermutation(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(person("a", 150))
	b, _ := s.Add(person("b", 160))
	c, _ := s.Add(person("c", 170))

	if err := s.ReorderIDs([]string{c, a, b}); err != nil {
		t.Fatalf("ReorderIDs() error: %v", err)
	}

	got := s.Avatars()
	if !slices.Equal(avatar.IDs(got), []string{c, a, b}) {
		t.Errorf("order = %v", avatar.IDs(got))
	}
	if len(got) != 3 {
		t.Errorf("count = %d, want 3", len(got))
	}
}

func TestReorderIgnoresValueChanges(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	s.Add(person("b", 160))

	seq := s.Avatars()
	slices.Reverse(seq)
	seq[0].Height = 999

	if err := s.Reorder(seq); err != nil {
		t.Fatalf("Reorder() error: %v", err)
	}
	if got := s.Avatars()[0].Height; got != 160 {
		t.Errorf("reorder leaked a value change: height = %v", got)
	}
}

func TestReorderRejectsNonPermutation(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(person("a", 150))
	b, _ := s.Add(person("b", 160))

	tests := []struct {
		name string
		ids  []string
	}{
		{"missing one", []string{a}},
		{"extra id", []string{a, b, "x"}},
		{"duplicate", []string{a, a}},
		{"unknown", []string{a, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.State()
			err := s.ReorderIDs(tt.ids)
			if !errors.Is(err, errors.ErrCodeInvalidPermutation) {
				t.Fatalf("ReorderIDs(%v) error = %v, want INVALID_PERMUTATION", tt.ids, err)
			}
			after := s.State()
			if !slices.Equal(avatar.IDs(before.Avatars), avatar.IDs(after.Avatars)) || after.Depth != before.Depth {
				t.Error("state changed after rejected reorder")
			}
		})
	}
}

func TestReorderSameOrderIsNoop(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	s.Add(person("b", 160))
	depth := s.State().Depth

	if err := s.Reorder(s.Avatars()); err != nil {
		t.Fatal(err)
	}
	if s.State().Depth != depth {
		t.Error("same-order reorder should not record history")
	}
}

func TestMove(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(person("a", 150))
	b, _ := s.Add(person("b", 160))
	c, _ := s.Add(person("c", 170))

	if !s.Move(a, 10) {
		t.Fatal("Move() should succeed")
	}
	if got := avatar.IDs(s.Avatars()); !slices.Equal(got, []string{b, c, a}) {
		t.Errorf("order = %v", got)
	}
	if s.Move(a, 2) {
		t.Error("Move() to current index should be a no-op")
	}
	if s.Move("missing", 0) {
		t.Error("Move() of unknown id should report false")
	}
}

func TestClearIsUndoable(t *testing.T) {
	s := newTestStore()
	s.Clear()
	if !s.CanUndo() {
		t.Fatal("clearing an empty board should still be undoable")
	}

	s.Add(person("a", 150))
	s.Clear()
	if s.Len() != 0 {
		t.Fatal("Clear() should empty the collection")
	}
	s.Undo()
	if s.Len() != 1 {
		t.Errorf("Undo() after Clear() Len = %d, want 1", s.Len())
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestStore()
	initial := s.Avatars()

	a, _ := s.Add(person("a", 150))
	b, _ := s.Add(person("b", 160))
	name := "renamed"
	s.Update(a, avatar.Patch{Name: &name})
	s.ReorderIDs([]string{b, a})
	s.Remove(b)
	final := s.Avatars()
	const n = 5

	for i := 0; i < n; i++ {
		if !s.Undo() {
			t.Fatalf("Undo() #%d failed", i+1)
		}
	}
	if !slices.Equal(s.Avatars(), initial) {
		t.Errorf("after %d undos = %+v, want initial %+v", n, s.Avatars(), initial)
	}
	if s.Undo() {
		t.Error("Undo() past the oldest entry should report false")
	}

	for i := 0; i < n; i++ {
		if !s.Redo() {
			t.Fatalf("Redo() #%d failed", i+1)
		}
	}
	if !slices.Equal(s.Avatars(), final) {
		t.Errorf("after %d redos = %+v, want %+v", n, s.Avatars(), final)
	}
	if s.Redo() {
		t.Error("Redo() past the newest entry should report false")
	}
}

func TestMutationTruncatesRedo(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	s.Add(person("b", 160))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("CanRedo() should be true after undo")
	}
	s.Add(person("c", 170))
	if s.CanRedo() {
		t.Error("a new mutation should drop the redo future")
	}
	if got := s.State().Depth; got != 3 {
		t.Errorf("Depth = %d, want 3", got)
	}
}

func TestUndoRedoDoNotGrowHistory(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	depth := s.State().Depth
	s.Undo()
	s.Redo()
	if s.State().Depth != depth {
		t.Errorf("Depth = %d, want %d", s.State().Depth, depth)
	}
}

func TestHistoryDepthEvictsOldest(t *testing.T) {
	s := newTestStore(WithHistoryDepth(3))
	for i := 0; i < 5; i++ {
		s.Add(person(fmt.Sprint(i), 150))
	}
	if got := s.State().Depth; got != 3 {
		t.Fatalf("Depth = %d, want 3", got)
	}
	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != 2 {
		t.Errorf("undos = %d, want 2", undos)
	}
	if s.Len() != 3 {
		t.Errorf("oldest reachable snapshot Len = %d, want 3", s.Len())
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	s := newTestStore()
	s.Add(person("a", 150))
	got := s.Avatars()
	got[0].Name = "mutated"

	if s.Avatars()[0].Name != "a" {
		t.Error("Avatars() must return a copy")
	}
}

func TestZoom(t *testing.T) {
	s := newTestStore()
	depth := s.State().Depth

	tests := []struct {
		in, want float64
	}{
		{2, 2},
		{10, DefaultZoomMax},
		{0.1, DefaultZoomMin},
		{1.3, 1.3},
	}
	for _, tt := range tests {
		if got := s.SetZoom(tt.in); got != tt.want {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := s.ZoomIn(); got != 1.4 {
		t.Errorf("ZoomIn() = %v, want 1.4", got)
	}
	if got := s.ZoomOut(); got != 1.3 {
		t.Errorf("ZoomOut() = %v, want 1.3", got)
	}
	if s.State().Depth != depth {
		t.Error("zoom must not touch history")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore()
	var states []State
	unsubscribe := s.Subscribe(func(st State) { states = append(states, st) })

	s.Add(person("a", 150))
	s.SetZoom(2)
	s.Undo()
	s.Add(person("bad", -1))

	if len(states) != 3 {
		t.Fatalf("notifications = %d, want 3", len(states))
	}
	if states[0].Version >= states[1].Version || states[1].Version >= states[2].Version {
		t.Error("versions should increase")
	}

	unsubscribe()
	s.Redo()
	if len(states) != 3 {
		t.Error("unsubscribed listener still notified")
	}
}

func TestSubscriberMayCallBack(t *testing.T) {
	s := newTestStore()
	var seen int
	s.Subscribe(func(st State) { seen = s.Len() })
	s.Add(person("a", 150))
	if seen != 1 {
		t.Errorf("listener saw Len = %d, want 1", seen)
	}
}

func TestWithInitialSanitizes(t *testing.T) {
	s := newTestStore(WithInitial([]avatar.Avatar{
		{ID: "x", Kind: avatar.KindPerson, Height: 150},
		{ID: "x", Kind: avatar.KindPerson, Height: 160},
		{ID: "y", Kind: avatar.KindPerson, Height: -1},
	}))

	got := s.Avatars()
	if len(got) != 2 {
		t.Fatalf("Len = %d, want 2", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Error("duplicate ids should be replaced")
	}
	if s.CanUndo() {
		t.Error("initial snapshot should not be undoable")
	}
}
