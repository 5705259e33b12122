package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/topology"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the phase board",
	RunE:  runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	cols, err := topology.Columns(reg.Roster().Size())
	if err != nil {
		return err
	}

	hunts := reg.Snapshot()
	if len(hunts) == 0 {
		fmt.Printf("%sBoard is empty.%s Create a hunt: %spacktrack hunt create \"feature\"%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	// Group active and blocked hunts by current phase; completed hunts get
	// their own trailing column.
	byPhase := make(map[string][]*hunt.Hunt, len(cols))
	var done []*hunt.Hunt
	for _, h := range hunts {
		if h.Status == hunt.StatusCompleted {
			done = append(done, h)
			continue
		}
		byPhase[h.CurrentPhase] = append(byPhase[h.CurrentPhase], h)
	}

	type boardCol struct {
		label string
		color string
		cards []*hunt.Hunt
	}
	var order []boardCol
	for _, c := range cols {
		order = append(order, boardCol{
			label: strings.ToUpper(c.DisplayName),
			color: colorBlue,
			cards: byPhase[c.ID],
		})
	}
	order = append(order, boardCol{label: "DONE", color: colorGreen, cards: done})

	// Header row. Padding works on visible length, not byte length, because
	// the ANSI codes add bytes.
	colWidth := 26
	headerLine := ""
	sepLine := ""
	for _, c := range order {
		header := fmt.Sprintf(" %s%s%s (%d)", c.color+colorBold, c.label, colorReset, len(c.cards))
		visibleLen := len(fmt.Sprintf(" %s (%d)", c.label, len(c.cards)))
		headerLine += header + pad(colWidth-visibleLen)
		sepLine += strings.Repeat("─", colWidth)
	}
	fmt.Println(headerLine)
	fmt.Println(colorDim + sepLine + colorReset)

	maxRows := 0
	for _, c := range order {
		if len(c.cards) > maxRows {
			maxRows = len(c.cards)
		}
	}

	for i := 0; i < maxRows; i++ {
		line := ""
		for _, c := range order {
			if i < len(c.cards) {
				h := c.cards[i]
				title := truncate(h.FeatureName, colWidth-3)
				card := fmt.Sprintf(" %s%s%s", statusColor(h.Status), title, colorReset)
				line += card + pad(colWidth-len(" "+title))
			} else {
				line += pad(colWidth)
			}
		}
		fmt.Println(line)

		detailLine := ""
		for _, c := range order {
			if i < len(c.cards) {
				h := c.cards[i]
				detail := ""
				visible := ""
				if h.Status == hunt.StatusBlocked && h.BlockedReason != "" {
					reason := truncate(h.BlockedReason, colWidth-7)
					detail = fmt.Sprintf("    %s⚠ %s%s", colorRed, reason, colorReset)
					visible = fmt.Sprintf("    ⚠ %s", reason)
				} else if h.CurrentRole != "" {
					detail = fmt.Sprintf("    %s[%s]%s", colorCyan, h.CurrentRole, colorReset)
					visible = fmt.Sprintf("    [%s]", h.CurrentRole)
				}
				detailLine += detail + pad(colWidth-len(visible))
			} else {
				detailLine += pad(colWidth)
			}
		}
		fmt.Println(detailLine)
		fmt.Println()
	}

	// Blocked summary.
	var blocked []*hunt.Hunt
	for _, h := range hunts {
		if h.Status == hunt.StatusBlocked {
			blocked = append(blocked, h)
		}
	}
	if len(blocked) > 0 {
		fmt.Printf("%s%s⚠  Blocked hunts%s\n", colorBold, colorRed, colorReset)
		for _, h := range blocked {
			fmt.Printf("  %s%s%s: %s\n", colorYellow, h.ID, colorReset, h.BlockedReason)
			fmt.Printf("       → %spacktrack hunt unblock %s%s\n", colorCyan, h.ID, colorReset)
		}
		fmt.Println()
	}

	stats := reg.Statistics()
	fmt.Printf("%s%d hunts%s", colorBold, stats.Total, colorReset)
	if stats.Completed > 0 {
		fmt.Printf("  %s✓ %d done%s", colorGreen, stats.Completed, colorReset)
	}
	if stats.Active > 0 {
		fmt.Printf("  %s● %d active%s", colorBlue, stats.Active, colorReset)
	}
	if stats.Blocked > 0 {
		fmt.Printf("  %s⚠ %d blocked%s", colorRed, stats.Blocked, colorReset)
	}
	fmt.Println()

	return nil
}

func pad(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
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
