// Package tui is the interactive board. One column per pipeline phase plus a
// trailing Done column; hunts are created, advanced, blocked, and completed
// from the keyboard. All mutations go through the registry, so everything the
// board does is persisted and emitted like any other caller.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/registry"
	"github.com/packworks/packtrack/internal/topology"
)

// mode selects which screen the board is showing.
type mode int

const (
	modeBoard  mode = iota
	modeCreate      // create-hunt dialog
	modeBlock       // block-reason dialog
)

const refreshInterval = 2 * time.Second

// Model is the top-level bubbletea model.
type Model struct {
	reg    *registry.Registry
	width  int
	height int

	currentMode mode

	// Board state. phaseCols mirrors the topology column order; the last
	// entry of columns holds completed hunts.
	phaseCols []topology.Column
	columns   [][]*hunt.Hunt
	cursorCol int
	cursorRow int

	// Create/block dialog inputs.
	nameInput    textinput.Model
	descInput    textinput.Model
	reasonInput  textinput.Model
	inputFocused int // 0=name, 1=description in create mode

	statusMsg  string
	statusTime time.Time
	refreshing bool
	quitting   bool
}

// New creates the board model over an open registry.
func New(reg *registry.Registry) Model {
	ni := textinput.New()
	ni.Placeholder = "Feature name..."
	ni.CharLimit = 120
	ni.Width = 50

	di := textinput.New()
	di.Placeholder = "Description (optional)..."
	di.CharLimit = 500
	di.Width = 50

	ri := textinput.New()
	ri.Placeholder = "Why is this blocked?"
	ri.CharLimit = 500
	ri.Width = 50

	cols, _ := topology.Columns(reg.Roster().Size())

	return Model{
		reg:         reg,
		currentMode: modeBoard,
		phaseCols:   cols,
		columns:     make([][]*hunt.Hunt, len(cols)+1),
		nameInput:   ni,
		descInput:   di,
		reasonInput: ri,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHunts(), tickCmd())
}

type huntsLoadedMsg struct {
	hunts []*hunt.Hunt
}

type actionDoneMsg struct {
	verb string
	err  error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadHunts() tea.Cmd {
	return func() tea.Msg {
		return huntsLoadedMsg{hunts: m.reg.Snapshot()}
	}
}

// rebuildColumns distributes hunts into phase columns; completed hunts land
// in the trailing column.
func (m *Model) rebuildColumns(hunts []*hunt.Hunt) {
	for i := range m.columns {
		m.columns[i] = nil
	}
	doneCol := len(m.phaseCols)
	for _, h := range hunts {
		if h.Status == hunt.StatusCompleted {
			m.columns[doneCol] = append(m.columns[doneCol], h)
			continue
		}
		for i, c := range m.phaseCols {
			if h.CurrentPhase == c.ID {
				m.columns[i] = append(m.columns[i], h)
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
	if m.cursorCol >= len(m.columns) {
		m.cursorCol = len(m.columns) - 1
	}
	col := m.columns[m.cursorCol]
	if m.cursorRow >= len(col) {
		m.cursorRow = len(col) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m *Model) selectedHunt() *hunt.Hunt {
	col := m.columns[m.cursorCol]
	if m.cursorRow < len(col) {
		return col[m.cursorRow]
	}
	return nil
}
