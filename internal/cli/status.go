package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/hunt"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick status overview",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	stats := reg.Statistics()
	if stats.Total == 0 {
		fmt.Printf("No hunts. Run: %spacktrack hunt create \"feature\"%s\n", colorCyan, colorReset)
		return nil
	}

	fmt.Printf("%sPack %s — %d hunts%s (revision %d)\n",
		colorBold, reg.PackName(), stats.Total, colorReset, reg.Revision())
	fmt.Printf("  %-12s %s%d%s\n", "pending:", colorDim, stats.Pending, colorReset)
	fmt.Printf("  %-12s %s%d%s\n", "active:", colorBlue, stats.Active, colorReset)
	fmt.Printf("  %-12s %s%d%s\n", "blocked:", colorRed, stats.Blocked, colorReset)
	fmt.Printf("  %-12s %s%d%s\n", "completed:", colorGreen, stats.Completed, colorReset)

	if stats.Completed > 0 {
		fmt.Printf("\n  avg completion: %d min, total: %d min\n",
			stats.AverageDurationMinutes, stats.TotalDurationMinutes)
	}

	blocked := reg.HuntsByStatus(hunt.StatusBlocked)
	if len(blocked) > 0 {
		fmt.Printf("\n%s⚠  Blocked:%s\n", colorRed+colorBold, colorReset)
		for _, h := range blocked {
			fmt.Printf("  %s%s%s: %s\n", colorYellow, h.ID, colorReset, h.BlockedReason)
		}
	}

	return nil
}
