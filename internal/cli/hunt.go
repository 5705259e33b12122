package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/registry"
)

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Manage hunts",
}

var (
	huntCreateDesc   string
	huntListStatus   string
	huntListOwner    string
	huntTransitionTo string
	huntAssignee     string
	huntBlockReason  string
)

var huntCreateCmd = &cobra.Command{
	Use:   "create <feature name>",
	Short: "Create a hunt and start its first phase",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntCreate,
}

var huntListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hunts",
	RunE:  runHuntList,
}

var huntShowCmd = &cobra.Command{
	Use:   "show <hunt-id>",
	Short: "Show a hunt with its phase timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntShow,
}

var huntAdvanceCmd = &cobra.Command{
	Use:   "advance <hunt-id>",
	Short: "Move a hunt to its next phase",
	Long:  "Moves the hunt to the successor of its current phase.\nUse --to/--assignee to name the transition explicitly.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntAdvance,
}

var huntCompleteCmd = &cobra.Command{
	Use:   "complete <hunt-id>",
	Short: "Complete a hunt on its final phase",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntComplete,
}

var huntBlockCmd = &cobra.Command{
	Use:   "block <hunt-id>",
	Short: "Mark a hunt blocked",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntBlock,
}

var huntUnblockCmd = &cobra.Command{
	Use:   "unblock <hunt-id>",
	Short: "Resume a blocked hunt",
	Args:  cobra.ExactArgs(1),
	RunE:  runHuntUnblock,
}

func init() {
	huntCreateCmd.Flags().StringVarP(&huntCreateDesc, "description", "d", "", "hunt description")
	huntListCmd.Flags().StringVar(&huntListStatus, "status", "", "filter by status (pending|active|completed|blocked)")
	huntListCmd.Flags().StringVar(&huntListOwner, "owner", "", "filter by current assignee")
	huntAdvanceCmd.Flags().StringVar(&huntTransitionTo, "to", "", "target phase (defaults to the next phase)")
	huntAdvanceCmd.Flags().StringVar(&huntAssignee, "assignee", "", "assignee for the target phase (defaults to the roster mapping)")
	huntBlockCmd.Flags().StringVarP(&huntBlockReason, "reason", "r", "", "why the hunt is blocked")

	huntCmd.AddCommand(huntCreateCmd)
	huntCmd.AddCommand(huntListCmd)
	huntCmd.AddCommand(huntShowCmd)
	huntCmd.AddCommand(huntAdvanceCmd)
	huntCmd.AddCommand(huntCompleteCmd)
	huntCmd.AddCommand(huntBlockCmd)
	huntCmd.AddCommand(huntUnblockCmd)
}

func runHuntCreate(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := reg.StartHunt(args[0], huntCreateDesc)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s%s%s\n", colorBold, h.ID, colorReset)
	fmt.Printf("  %s → %s%s%s (%s)\n", h.FeatureName, colorCyan, h.CurrentPhase, colorReset, h.CurrentRole)
	return nil
}

func runHuntList(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	hunts, total := reg.List(registry.ListOptions{
		Owner:  huntListOwner,
		Status: hunt.Status(huntListStatus),
	})
	if total == 0 {
		fmt.Printf("%sNo hunts.%s Create one: %spacktrack hunt create \"feature\"%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	for _, h := range hunts {
		statusStr := statusColor(h.Status) + string(h.Status) + colorReset
		phase := h.CurrentPhase
		if phase == "" {
			phase = "-"
		}
		fmt.Printf("%s%-32s%s %-10s %s%-16s%s %s\n",
			colorYellow, h.ID, colorReset, statusStr, colorCyan, phase, colorReset, h.FeatureName)
		if h.Status == hunt.StatusBlocked && h.BlockedReason != "" {
			fmt.Printf("  %s⚠ %s%s\n", colorRed, h.BlockedReason, colorReset)
		}
	}
	fmt.Printf("\n%s%d hunts%s\n", colorBold, total, colorReset)
	return nil
}

func runHuntShow(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := resolveHunt(reg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s\n", colorBold, h.FeatureName, colorReset)
	fmt.Printf("  ID:       %s\n", h.ID)
	if h.Description != "" {
		fmt.Printf("  About:    %s\n", h.Description)
	}
	fmt.Printf("  Status:   %s%s%s\n", statusColor(h.Status), h.Status, colorReset)
	if h.BlockedReason != "" {
		fmt.Printf("  Blocked:  %s%s%s\n", colorRed, h.BlockedReason, colorReset)
	}
	fmt.Printf("  Team:     %d members\n", h.TeamSize)
	if !h.StartedAt.IsZero() {
		fmt.Printf("  Started:  %s\n", h.StartedAt.Format("2006-01-02 15:04"))
	}
	if h.CompletedAt != nil {
		fmt.Printf("  Finished: %s (%d min total)\n",
			h.CompletedAt.Format("2006-01-02 15:04"), h.Metrics.TotalDuration)
	}

	if len(h.PhaseHistory) > 0 {
		fmt.Printf("\n%sTimeline%s\n", colorBold, colorReset)
		for _, p := range h.PhaseHistory {
			marker := colorBlue + "●" + colorReset
			duration := colorDim + "in progress" + colorReset
			if p.EndTime != nil {
				marker = colorGreen + "✓" + colorReset
				duration = fmt.Sprintf("%d min", *p.Duration)
			}
			fmt.Printf("  %s %-16s %s[%s]%s %s\n", marker, p.Phase, colorCyan, p.Assignee, colorReset, duration)
		}
	}
	return nil
}

func runHuntAdvance(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := resolveHunt(reg, args[0])
	if err != nil {
		return err
	}

	if huntTransitionTo != "" {
		assignee := huntAssignee
		if assignee == "" {
			assignee, err = reg.Roster().AssigneeFor(huntTransitionTo)
			if err != nil {
				return err
			}
		}
		h, err = reg.TransitionHunt(h.ID, huntTransitionTo, assignee)
	} else {
		h, err = reg.AdvanceHunt(h.ID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s → %s%s%s (%s)\n", h.FeatureName, colorCyan, h.CurrentPhase, colorReset, h.CurrentRole)
	return nil
}

func runHuntComplete(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := resolveHunt(reg, args[0])
	if err != nil {
		return err
	}
	h, err = reg.CompleteHunt(h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s✓ %s completed%s (%d min)\n", colorGreen, h.FeatureName, colorReset, h.Metrics.TotalDuration)
	return nil
}

func runHuntBlock(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := resolveHunt(reg, args[0])
	if err != nil {
		return err
	}
	h, err = reg.BlockHunt(h.ID, huntBlockReason)
	if err != nil {
		return err
	}

	fmt.Printf("%s⚠ %s blocked%s", colorRed, h.FeatureName, colorReset)
	if h.BlockedReason != "" {
		fmt.Printf(": %s", h.BlockedReason)
	}
	fmt.Println()
	return nil
}

func runHuntUnblock(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := resolveHunt(reg, args[0])
	if err != nil {
		return err
	}
	h, err = reg.UnblockHunt(h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s● %s resumed%s on %s\n", colorBlue, h.FeatureName, colorReset, h.CurrentPhase)
	return nil
}

// resolveHunt accepts a full hunt ID or any unique fragment of one, so users
// can paste the random suffix instead of the whole ID.
func resolveHunt(reg *registry.Registry, ref string) (*hunt.Hunt, error) {
	if h, err := reg.Hunt(ref); err == nil {
		return h, nil
	}

	var matches []*hunt.Hunt
	for _, h := range reg.Snapshot() {
		if strings.Contains(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no hunt matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d hunts, be more specific", ref, len(matches))
	}
}

func statusColor(s hunt.Status) string {
	switch s {
	case hunt.StatusActive:
		return colorBlue
	case hunt.StatusCompleted:
		return colorGreen
	case hunt.StatusBlocked:
		return colorRed
	default:
		return colorDim
	}
}
