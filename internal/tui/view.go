package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/packworks/packtrack/internal/hunt"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

const cardWidth = 28

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	columnHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(clrBlue)
	doneHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(clrGreen)
	assigneeStyle     = lipgloss.NewStyle().Foreground(clrCyan)
	blockedStyle      = lipgloss.NewStyle().Foreground(clrRed)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1).
			Width(cardWidth)

	cardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrHighlight).
				Padding(0, 1).
				Width(cardWidth).
				Bold(true)

	cardBlockedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrRed).
				Padding(0, 1).
				Width(cardWidth)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.currentMode {
	case modeCreate:
		return m.viewCreateDialog()
	case modeBlock:
		return m.viewBlockDialog()
	}
	return m.viewBoard()
}

func (m Model) viewBoard() string {
	var b strings.Builder

	header := titleStyle.Render(m.reg.PackName() + " board")
	total := 0
	for _, col := range m.columns {
		total += len(col)
	}
	header += dimStyle.Render(fmt.Sprintf(" — %d hunts", total))

	rightHelp := footerKeyStyle.Render("c") + footerDescStyle.Render(" new  ") +
		footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")

	headerLine := header
	if m.width > 0 {
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(rightHelp)
		if gap > 0 {
			headerLine = header + strings.Repeat(" ", gap) + rightHelp
		}
	}
	b.WriteString(headerLine + "\n\n")

	// Render each column as a vertical stack of cards, then join them.
	rendered := make([]string, 0, len(m.columns))
	for ci := range m.columns {
		rendered = append(rendered, m.renderColumn(ci))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg) + "\n")
	}

	footer := footerKeyStyle.Render("←→↑↓") + footerDescStyle.Render(" move  ") +
		footerKeyStyle.Render("a") + footerDescStyle.Render(" advance  ") +
		footerKeyStyle.Render("x") + footerDescStyle.Render(" complete  ") +
		footerKeyStyle.Render("b") + footerDescStyle.Render(" block  ") +
		footerKeyStyle.Render("u") + footerDescStyle.Render(" unblock  ") +
		footerKeyStyle.Render("r") + footerDescStyle.Render(" refresh")
	b.WriteString(footer)

	return b.String()
}

func (m Model) renderColumn(ci int) string {
	var b strings.Builder

	if ci < len(m.phaseCols) {
		c := m.phaseCols[ci]
		b.WriteString(" " + columnHeaderStyle.Render(fmt.Sprintf("%s %s (%d)", c.Emoji, c.DisplayName, len(m.columns[ci]))))
	} else {
		b.WriteString(" " + doneHeaderStyle.Render(fmt.Sprintf("✓ Done (%d)", len(m.columns[ci]))))
	}
	b.WriteString("\n")

	for ri, h := range m.columns[ci] {
		style := cardStyle
		if h.Status == hunt.StatusBlocked {
			style = cardBlockedStyle
		}
		if ci == m.cursorCol && ri == m.cursorRow {
			style = cardSelectedStyle
		}

		var card strings.Builder
		card.WriteString(truncate(h.FeatureName, cardWidth-4))
		card.WriteString("\n")
		if h.Status == hunt.StatusBlocked && h.BlockedReason != "" {
			card.WriteString(blockedStyle.Render("⚠ " + truncate(h.BlockedReason, cardWidth-6)))
		} else if h.CurrentRole != "" {
			card.WriteString(assigneeStyle.Render("[" + h.CurrentRole + "]"))
		} else {
			card.WriteString(dimStyle.Render(fmt.Sprintf("%d min", h.Metrics.TotalDuration)))
		}
		b.WriteString(style.Render(card.String()) + "\n")
	}

	if len(m.columns[ci]) == 0 {
		b.WriteString(dimStyle.Render("  (empty)") + "\n")
	}

	return lipgloss.NewStyle().Width(cardWidth + 3).Render(b.String())
}

func (m Model) viewCreateDialog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New hunt") + "\n\n")
	b.WriteString(subtleStyle.Render("Feature name") + "\n")
	b.WriteString(m.nameInput.View() + "\n\n")
	b.WriteString(subtleStyle.Render("Description") + "\n")
	b.WriteString(m.descInput.View() + "\n\n")
	b.WriteString(footerKeyStyle.Render("enter") + footerDescStyle.Render(" create  ") +
		footerKeyStyle.Render("tab") + footerDescStyle.Render(" switch field  ") +
		footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel"))
	return m.centered(popupStyle.Render(b.String()))
}

func (m Model) viewBlockDialog() string {
	var b strings.Builder
	title := "Block hunt"
	if h := m.selectedHunt(); h != nil {
		title = "Block " + truncate(h.FeatureName, 40)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(m.reasonInput.View() + "\n\n")
	b.WriteString(footerKeyStyle.Render("enter") + footerDescStyle.Render(" block  ") +
		footerKeyStyle.Render("esc") + footerDescStyle.Render(" cancel"))
	return m.centered(popupStyle.Render(b.String()))
}

func (m Model) centered(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
