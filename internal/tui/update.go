package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.currentMode {
		case modeCreate:
			return m.handleCreateKey(msg)
		case modeBlock:
			return m.handleBlockKey(msg)
		}
		return m.handleBoardKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case huntsLoadedMsg:
		m.rebuildColumns(msg.hunts)
		m.refreshing = false
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.verb + " failed: " + msg.err.Error())
			return m, nil
		}
		m.setStatus(msg.verb + " ok")
		return m, m.loadHunts()

	case tickMsg:
		var cmds []tea.Cmd
		cmds = append(cmds, tickCmd())
		if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
			m.statusMsg = ""
		}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.loadHunts())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		m.cursorCol--
		m.clampCursor()
	case "right", "l":
		m.cursorCol++
		m.clampCursor()
	case "up", "k":
		m.cursorRow--
		m.clampCursor()
	case "down", "j":
		m.cursorRow++
		m.clampCursor()

	case "c":
		m.currentMode = modeCreate
		m.inputFocused = 0
		m.nameInput.SetValue("")
		m.descInput.SetValue("")
		m.nameInput.Focus()
		m.descInput.Blur()
		return m, textinput.Blink

	case "a", "enter":
		if h := m.selectedHunt(); h != nil {
			id := h.ID
			return m, func() tea.Msg {
				_, err := m.reg.AdvanceHunt(id)
				return actionDoneMsg{verb: "advance", err: err}
			}
		}

	case "x":
		if h := m.selectedHunt(); h != nil {
			id := h.ID
			return m, func() tea.Msg {
				_, err := m.reg.CompleteHunt(id)
				return actionDoneMsg{verb: "complete", err: err}
			}
		}

	case "b":
		if m.selectedHunt() != nil {
			m.currentMode = modeBlock
			m.reasonInput.SetValue("")
			m.reasonInput.Focus()
			return m, textinput.Blink
		}

	case "u":
		if h := m.selectedHunt(); h != nil {
			id := h.ID
			return m, func() tea.Msg {
				_, err := m.reg.UnblockHunt(id)
				return actionDoneMsg{verb: "unblock", err: err}
			}
		}

	case "r":
		if !m.refreshing {
			m.refreshing = true
			return m, m.loadHunts()
		}
	}

	return m, nil
}

func (m Model) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentMode = modeBoard
		return m, nil

	case "tab", "shift+tab":
		m.inputFocused = 1 - m.inputFocused
		if m.inputFocused == 0 {
			m.nameInput.Focus()
			m.descInput.Blur()
		} else {
			m.nameInput.Blur()
			m.descInput.Focus()
		}
		return m, textinput.Blink

	case "enter":
		name := m.nameInput.Value()
		desc := m.descInput.Value()
		if name == "" {
			m.setStatus("Feature name is required")
			return m, nil
		}
		m.currentMode = modeBoard
		return m, func() tea.Msg {
			_, err := m.reg.StartHunt(name, desc)
			return actionDoneMsg{verb: "create", err: err}
		}
	}

	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleBlockKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentMode = modeBoard
		return m, nil

	case "enter":
		h := m.selectedHunt()
		reason := m.reasonInput.Value()
		m.currentMode = modeBoard
		if h == nil {
			return m, nil
		}
		id := h.ID
		return m, func() tea.Msg {
			_, err := m.reg.BlockHunt(id, reason)
			return actionDoneMsg{verb: "block", err: err}
		}
	}

	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusTime = time.Now()
}
