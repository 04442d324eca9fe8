package cli

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/compress"
	"github.com/matzehuels/heightchart/pkg/store"
)

func newTestModel(t *testing.T, save func() error) (BoardModel, *store.Store) {
	t.Helper()
	n := 0
	st := store.New(
		store.WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		store.WithLogger(log.New(io.Discard)),
		store.WithInitial([]avatar.Avatar{
			{Kind: avatar.KindPerson, Name: "Ana", Height: 165, Color: "#e11d48"},
			{Kind: avatar.KindPerson, Name: "Bo", Height: 188},
			{Kind: avatar.KindObject, Name: "Door", Height: 203},
		}),
	)
	cfg := board.DefaultConfig()
	cfg.AutoNarrow = true
	sched := compress.NewManualScheduler()
	b := board.New(st, cfg, board.WithScheduler(sched), board.WithLogger(log.New(io.Discard)))
	t.Cleanup(b.Close)

	m := NewBoardModel(b, sched, save)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, st
}

func update(t *testing.T, m BoardModel, msgs ...tea.Msg) BoardModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(BoardModel)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func names(st *store.Store) string {
	var out []string
	for _, a := range st.Avatars() {
		out = append(out, a.Name)
	}
	return strings.Join(out, ",")
}

func TestBoardModelNavigateAndMove(t *testing.T) {
	m, st := newTestModel(t, nil)

	m = update(t, m, key("right"), key("right"), key("right"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want clamp at 2", m.cursor)
	}
	m = update(t, m, key("H"))
	if got := names(st); got != "Ana,Door,Bo" {
		t.Errorf("after move left = %s", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor did not follow the moved avatar: %d", m.cursor)
	}

	m = update(t, m, key("u"))
	if got := names(st); got != "Ana,Bo,Door" {
		t.Errorf("after undo = %s", got)
	}
	m = update(t, m, key("r"))
	if got := names(st); got != "Ana,Door,Bo" {
		t.Errorf("after redo = %s", got)
	}
}

func TestBoardModelAddEditRemove(t *testing.T) {
	m, st := newTestModel(t, nil)

	m = update(t, m, key("a"), key(`Cy, 5'9", #22c55e`), key("enter"))
	if m.err != nil {
		t.Fatalf("add: %v", m.err)
	}
	if st.Len() != 4 || m.cursor != 3 {
		t.Fatalf("Len() = %d cursor = %d after add", st.Len(), m.cursor)
	}
	added := st.Avatars()[3]
	if added.Name != "Cy" || added.Color != "#22c55e" || added.Height < 175 || added.Height > 176 {
		t.Errorf("added = %+v", added)
	}

	// the edit prompt is prefilled; replace it with a new height
	m = update(t, m, key("e"))
	if m.mode != inputEdit || !strings.HasPrefix(m.input.Value(), "Cy, ") {
		t.Fatalf("edit prompt = %q mode %d", m.input.Value(), m.mode)
	}
	m.input.SetValue("Cy, 180")
	m = update(t, m, key("enter"))
	if a, _ := st.Get(added.ID); a.Height != 180 || a.Color != "" {
		t.Errorf("after edit = %+v", a)
	}

	m = update(t, m, key("d"))
	if st.Len() != 3 || m.cursor != 2 {
		t.Errorf("Len() = %d cursor = %d after delete", st.Len(), m.cursor)
	}
}

func TestBoardModelInputErrors(t *testing.T) {
	m, st := newTestModel(t, nil)

	m = update(t, m, key("a"), key("Nobody"), key("enter"))
	if m.err == nil || m.mode != inputAdd {
		t.Errorf("missing height accepted: err=%v mode=%d", m.err, m.mode)
	}
	m = update(t, m, key("esc"))
	if m.mode != inputNone || st.Len() != 3 {
		t.Errorf("esc left mode %d, Len() = %d", m.mode, st.Len())
	}

	// objects carry no edit control
	m = update(t, m, key("right"), key("right"), key("e"))
	if m.mode != inputNone || m.status == "" {
		t.Errorf("edit on object opened the prompt")
	}
}

func TestBoardModelZoomNarrowSave(t *testing.T) {
	saved := 0
	m, st := newTestModel(t, func() error { saved++; return nil })

	m = update(t, m, key("+"), key("+"))
	if got := st.Zoom(); got != 1.2 {
		t.Errorf("zoom = %v, want 1.2", got)
	}
	m = update(t, m, key("0"))
	if st.Zoom() != 1 {
		t.Errorf("zoom reset = %v", st.Zoom())
	}

	if m.board.Narrow() {
		t.Fatal("140 columns should lay out wide")
	}
	m = update(t, m, key("n"))
	if !m.board.Narrow() || m.board.Strategy() != "mobile" {
		t.Errorf("n did not switch to the narrow layout")
	}
	for m.sched.Pending() > 0 {
		m = update(t, m, frameMsg{})
	}

	m = update(t, m, key("s"))
	if saved != 1 || m.status != "Saved" {
		t.Errorf("saved = %d status = %q", saved, m.status)
	}
}

func TestBoardModelResizeNarrow(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 30})
	if !m.board.Narrow() {
		t.Error("a 60 column terminal should switch to the narrow layout")
	}
}

func TestBoardModelView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	view := m.View()
	for _, want := range []string{"Ana", "Door", "165.0 cm", "5ft 5in", "desktop", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if !strings.Contains(view, "█") || !strings.Contains(view, "▓") {
		t.Error("view draws no avatar columns")
	}
}

func TestBoardModelQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	for _, k := range []string{"q", "esc"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}
