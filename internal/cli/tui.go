package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/compress"
	"github.com/matzehuels/heightchart/pkg/errors"
	chartio "github.com/matzehuels/heightchart/pkg/io"
	"github.com/matzehuels/heightchart/pkg/store"
	"github.com/matzehuels/heightchart/pkg/units"
)

// Terminal cells are mapped to board pixels with these sizes, so a chart
// area of 96 columns sits on the default narrow breakpoint.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	// chromeLines are the terminal lines not used by the chart area.
	chromeLines = 7
	scaleGutter = 6
)

var (
	tuiLineStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	tuiBaselineStyle = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	tuiSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	tuiObjectStyle   = lipgloss.NewStyle().Foreground(colorLabel)
	tuiStatusStyle   = lipgloss.NewStyle().Foreground(colorOK)
	tuiPersonStyle   = lipgloss.NewStyle().Foreground(colorText)
)

// frameMsg advances the convergence scheduler by one frame.
type frameMsg struct{}

// inputMode is what the text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputEdit
)

// BoardModel is the bubbletea model for the interactive board.
type BoardModel struct {
	board *board.Board
	store *store.Store
	sched *compress.ManualScheduler
	save  func() error

	cursor int
	cols   int
	lines  int

	mode    inputMode
	input   textinput.Model
	status  string
	err     error
	ticking bool
}

// NewBoardModel creates a board model. save is called on "s"; it may be nil.
func NewBoardModel(b *board.Board, sched *compress.ManualScheduler, save func() error) BoardModel {
	ti := textinput.New()
	ti.Prompt = "│ "
	ti.CharLimit = 128
	ti.PromptStyle = StyleHighlight
	return BoardModel{
		board: b,
		store: b.Store(),
		sched: sched,
		save:  save,
		cols:  80,
		lines: 24,
		input: ti,
	}
}

// Init starts nothing: the first WindowSizeMsg lays the board out and
// starts the frame loop.
func (m BoardModel) Init() tea.Cmd {
	return nil
}

// tick schedules the next frame while the convergence loop has work queued.
// At most one frame is in flight.
func (m *BoardModel) tick() tea.Cmd {
	if m.ticking || m.sched == nil || m.sched.Pending() == 0 {
		return nil
	}
	m.ticking = true
	return tea.Tick(compress.DefaultFrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.ticking = false
		m.sched.RunFrame()
		cmd := m.tick()
		return m, cmd

	case tea.WindowSizeMsg:
		m.cols, m.lines = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-4)
		w, h := m.chartSize()
		m.board.Resize(float64(w)*cellWidth, float64(h)*cellHeight)
		m.board.Settle()
		cmd := m.tick()
		return m, cmd

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m BoardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	avs := m.store.Avatars()
	m.err = nil
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.cursor = max(0, m.cursor-1)
	case "right", "l":
		m.cursor = min(max(0, len(avs)-1), m.cursor+1)
	case "shift+left", "H":
		if m.cursor > 0 && m.cursor < len(avs) && m.board.Drop(avs[m.cursor].ID, m.cursor-1) {
			m.cursor--
		}
	case "shift+right", "L":
		if m.cursor < len(avs)-1 && m.board.Drop(avs[m.cursor].ID, m.cursor+1) {
			m.cursor++
		}
	case "d", "delete", "backspace":
		if m.cursor < len(avs) {
			m.board.Remove(avs[m.cursor].ID)
			m.status = "Removed " + avs[m.cursor].DisplayName()
		}
	case "u":
		if !m.store.Undo() {
			m.status = "Nothing to undo"
		}
	case "r", "ctrl+r":
		if !m.store.Redo() {
			m.status = "Nothing to redo"
		}
	case "+", "=":
		m.store.ZoomIn()
	case "-", "_":
		m.store.ZoomOut()
	case "0":
		m.store.SetZoom(1)
	case "n":
		m.board.SetNarrow(!m.board.Narrow())
	case "c":
		m.store.Clear()
		m.status = "Cleared (u to undo)"
	case "a":
		m.mode = inputAdd
		m.input.Placeholder = `name, height, color  e.g. Ana, 5'8", #e11d48`
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "e":
		if m.cursor < len(avs) && avs[m.cursor].IsPerson() {
			a := avs[m.cursor]
			m.mode = inputEdit
			m.input.Placeholder = "name, height, color"
			m.input.SetValue(fmt.Sprintf("%s, %g, %s", a.Name, a.Height, a.Color))
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		}
		m.status = "Objects cannot be edited"
	case "s":
		if m.save == nil {
			m.status = "No chart file to save to"
		} else if err := m.save(); err != nil {
			m.err = err
		} else {
			m.status = "Saved"
		}
	}
	m.cursor = min(m.cursor, max(0, m.store.Len()-1))
	cmd := m.tick()
	return m, cmd
}

func (m BoardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		err := m.applyInput(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.mode = inputNone
		m.input.Blur()
		cmd := m.tick()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyInput parses "name, height[, color]" and adds or edits an avatar.
func (m *BoardModel) applyInput(value string) error {
	fields := strings.Split(value, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "expected: name, height[, color]")
	}
	height, err := units.ParseHeight(fields[1])
	if err != nil {
		return err
	}
	name, color := fields[0], ""
	if len(fields) > 2 {
		color = fields[2]
	}

	if m.mode == inputEdit {
		avs := m.store.Avatars()
		if m.cursor >= len(avs) {
			return errors.New(errors.ErrCodeNotFound, "nothing selected")
		}
		err := m.board.Edit(avs[m.cursor].ID, avatar.Patch{Name: &name, Height: &height, Color: &color})
		if err == nil {
			m.status = "Updated " + name
		}
		return err
	}

	a := avatar.Avatar{Kind: avatar.KindPerson, Name: name, Height: height, Color: color}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := m.store.Add(a); !ok {
		return errors.New(errors.ErrCodeInvalidAvatar, "avatar rejected")
	}
	m.cursor = m.store.Len() - 1
	m.status = "Added " + a.DisplayName()
	return nil
}

// chartSize returns the chart area in cells.
func (m BoardModel) chartSize() (cols, lines int) {
	return max(20, m.cols-scaleGutter), max(8, m.lines-chromeLines)
}

func (m BoardModel) View() string {
	l := m.board.Layout()
	cols, lines := m.chartSize()

	var b strings.Builder
	b.WriteString(StyleTitle.Render(l.Title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s · compression %.3f · zoom %.1f", l.Strategy, l.Compression, l.Zoom)))
	b.WriteString("\n")
	b.WriteString(drawChart(l, cols, lines, m.cursor))
	b.WriteString(drawNames(l, cols))
	b.WriteString("\n")
	b.WriteString(m.selectionLine(l))
	b.WriteString("\n")

	switch {
	case m.mode != inputNone:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(StyleError.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(tuiStatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ select  H/L move  a add  e edit  d delete  u/r undo/redo  +/- zoom  n narrow  s save  q quit"))
	return b.String()
}

func (m BoardModel) selectionLine(l board.Layout) string {
	if len(l.Visuals) == 0 {
		return StyleDim.Render("Empty board, press a to add someone")
	}
	v := l.Visuals[min(m.cursor, len(l.Visuals)-1)]
	parts := []string{v.Labels.Name, v.Labels.Height, v.Labels.Imperial}
	if v.Labels.Weight != "" {
		parts = append(parts, v.Labels.Weight)
	}
	line := StyleValue.Render(strings.Join(parts, " · "))
	if l.Overflow {
		line += "  " + StyleWarning.Render("overflow")
	}
	return line
}

// drawChart rasterizes the layout into terminal cells: ruled rows with their
// cm label in a left gutter, avatars as filled columns.
func drawChart(l board.Layout, cols, lines int, cursor int) string {
	if l.Width <= 0 || l.Height <= 0 {
		return ""
	}
	sx := float64(cols) / l.Width
	sy := float64(lines) / l.Height

	type cell struct {
		r     rune
		style *lipgloss.Style
	}
	grid := make([][]cell, lines)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	gutter := make([]string, lines)

	for _, row := range l.Rows {
		y := int(row.Y * sy)
		if y < 0 || y >= lines {
			continue
		}
		r, style := '┈', &tuiLineStyle
		if row.Baseline {
			r, style = '━', &tuiBaselineStyle
		}
		for x := range grid[y] {
			grid[y][x] = cell{r: r, style: style}
		}
		gutter[y] = row.Cm
	}

	for i, v := range l.Visuals {
		x0 := int(v.X * sx)
		x1 := max(x0+1, int((v.X+v.Width)*sx))
		y0 := max(0, int(v.Y*sy))
		y1 := min(lines, int(max(0, l.BaselineY)*sy))
		style := visualStyle(v, i == cursor)
		r := '█'
		if !v.Avatar.IsPerson() {
			r = '▓'
		}
		for y := y0; y < y1; y++ {
			for x := max(0, x0); x < min(cols, x1); x++ {
				grid[y][x] = cell{r: r, style: style}
			}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%*s ", scaleGutter-1, gutter[y])))
		// Join runs of equally styled cells so each run is rendered once.
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:x] {
				run.WriteRune(c.r)
			}
			if s := row[start].style; s != nil {
				b.WriteString(s.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			start = x
		}
		b.WriteString("\n")
	}
	return b.String()
}

func visualStyle(v board.Visual, selected bool) *lipgloss.Style {
	if selected {
		return &tuiSelectedStyle
	}
	if !v.Avatar.IsPerson() {
		return &tuiObjectStyle
	}
	if strings.HasPrefix(v.Avatar.Color, "#") {
		s := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Avatar.Color))
		return &s
	}
	return &tuiPersonStyle
}

// drawNames writes each name under its column, truncated to the column width.
func drawNames(l board.Layout, cols int) string {
	if l.Width <= 0 || len(l.Visuals) == 0 {
		return "\n"
	}
	sx := float64(cols) / l.Width
	line := []rune(strings.Repeat(" ", cols))
	for _, v := range l.Visuals {
		x0 := max(0, int(v.X*sx))
		width := max(1, int((v.X+v.Width)*sx)-x0)
		name := []rune(v.Labels.Name)
		if len(name) > width {
			name = name[:width]
		}
		for i, r := range name {
			if x0+i < cols {
				line[x0+i] = r
			}
		}
	}
	return strings.Repeat(" ", scaleGutter) + string(line) + "\n"
}

// boardCommand opens a chart in the interactive board.
func (c *CLI) boardCommand() *cobra.Command {
	var narrow string
	cmd := &cobra.Command{
		Use:   "board [chart.json]",
		Short: "Edit a chart interactively in the terminal",
		Long: `Board opens a chart in a full-screen terminal view. The board is laid out
against the terminal size and switches to the narrow layout below the
configured breakpoint. Changes are written back with "s".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateNarrow(narrow); err != nil {
				return err
			}
			return c.runBoard(args, narrow)
		},
	}
	cmd.Flags().StringVar(&narrow, "narrow", "auto", "viewport class: auto, true, false")
	registerNarrowCompletion(cmd)
	return cmd
}

func (c *CLI) runBoard(args []string, narrow string) error {
	var (
		path  string
		chart chartio.Chart
		err   error
	)
	if len(args) == 1 {
		path = args[0]
		if chart, err = loadChart(path, true); err != nil {
			return err
		}
	}

	vp := viewport{narrow: narrow}
	bc := c.boardConfig(vp, chart.Title)
	sched := compress.NewManualScheduler()
	opts := []board.Option{board.WithScheduler(sched), board.WithLogger(c.Logger)}
	if forced, ok := vp.narrowOverride(); ok {
		opts = append(opts, board.WithNarrow(forced))
	} else {
		bc.AutoNarrow = true
	}
	b := board.New(c.newStore(chart), bc, opts...)
	defer b.Close()

	var save func() error
	if path != "" {
		save = func() error { return saveChart(path, chart.Title, b.Store()) }
	}

	// The board logs through c.Logger; keep it off the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	defer c.Logger.SetLevel(level)

	_, err = tea.NewProgram(NewBoardModel(b, sched, save), tea.WithAltScreen()).Run()
	return err
}
