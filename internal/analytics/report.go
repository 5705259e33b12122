package analytics

import (
	"fmt"
	"strings"

	"github.com/packworks/packtrack/internal/hunt"
)

// reportVelocityMonths is the trailing window the team report uses.
const reportVelocityMonths = 1

// rebalanceThreshold: a role handling more than this many completed phase
// records earns a workload recommendation.
const rebalanceThreshold = 10

// Summary holds the headline counts for the report.
type Summary struct {
	TotalHunts     int `json:"totalHunts"`
	ActiveHunts    int `json:"activeHunts"`
	CompletedHunts int `json:"completedHunts"`
	BlockedHunts   int `json:"blockedHunts"`
}

// Report bundles every derived metric into one document.
type Report struct {
	PackName        string         `json:"packName"`
	GeneratedAt     string         `json:"generatedAt"`
	Summary         Summary        `json:"summary"`
	Velocity        Velocity       `json:"velocity"`
	RoleUtilization []RoleStats    `json:"roleUtilization"`
	Quality         QualityMetrics `json:"quality"`
	PhaseAnalysis   []PhaseStats   `json:"phaseAnalysis"`
	Bottlenecks     []Bottleneck   `json:"bottlenecks"`
	Recommendations []string       `json:"recommendations"`
}

// TeamReport computes the full report over everything recorded so far.
func (e *Engine) TeamReport(packName string) Report {
	summary := Summary{TotalHunts: len(e.metrics)}
	for _, h := range e.metrics {
		switch h.Status {
		case hunt.StatusActive:
			summary.ActiveHunts++
		case hunt.StatusCompleted:
			summary.CompletedHunts++
		case hunt.StatusBlocked:
			summary.BlockedHunts++
		}
	}

	velocity := e.PackVelocity(reportVelocityMonths)
	utilization := e.RoleUtilization()
	bottlenecks := e.IdentifyBottlenecks()

	return Report{
		PackName:        packName,
		GeneratedAt:     timeNow().UTC().Format("2006-01-02 15:04"),
		Summary:         summary,
		Velocity:        velocity,
		RoleUtilization: utilization,
		Quality:         e.QualityMetrics(),
		PhaseAnalysis:   e.PhaseAnalysis(),
		Bottlenecks:     bottlenecks,
		Recommendations: recommendations(velocity, utilization, bottlenecks),
	}
}

// recommendations derives free-text advice from low velocity, bottlenecks,
// and lopsided role workloads.
func recommendations(v Velocity, utilization []RoleStats, bottlenecks []Bottleneck) []string {
	var recs []string

	if v.CompletedHunts > 0 && v.HuntsPerWeek < 1 {
		recs = append(recs, "Velocity is below one hunt per week; consider smaller hunts or clearing blocked work first.")
	}
	for _, b := range bottlenecks {
		recs = append(recs, b.Recommendation)
	}
	for _, s := range utilization {
		if s.CompletedTasks > rebalanceThreshold {
			recs = append(recs, fmt.Sprintf("%s has handled %d completed tasks; consider rebalancing assignments.", s.Role, s.CompletedTasks))
		}
	}
	return recs
}

// FormatReportAsMarkdown renders the report as a human-readable document.
func FormatReportAsMarkdown(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Pack Report — %s\n\n", r.PackName)
	fmt.Fprintf(&b, "Generated %s\n\n", r.GeneratedAt)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total hunts: %d\n", r.Summary.TotalHunts)
	fmt.Fprintf(&b, "- Active: %d\n", r.Summary.ActiveHunts)
	fmt.Fprintf(&b, "- Completed: %d\n", r.Summary.CompletedHunts)
	fmt.Fprintf(&b, "- Blocked: %d\n\n", r.Summary.BlockedHunts)

	b.WriteString("## Velocity\n\n")
	fmt.Fprintf(&b, "- Completed in window: %d\n", r.Velocity.CompletedHunts)
	fmt.Fprintf(&b, "- Hunts per day: %.2f\n", r.Velocity.HuntsPerDay)
	fmt.Fprintf(&b, "- Hunts per week: %.2f\n", r.Velocity.HuntsPerWeek)
	fmt.Fprintf(&b, "- Hunts per month: %.2f\n", r.Velocity.HuntsPerMonth)
	fmt.Fprintf(&b, "- Trend: %s\n\n", r.Velocity.Trend)

	b.WriteString("## Quality\n\n")
	if r.Quality.CompletedHunts == 0 {
		b.WriteString("No completed hunts yet.\n\n")
	} else {
		fmt.Fprintf(&b, "- Average duration: %.0f min\n", r.Quality.AverageDuration)
		fmt.Fprintf(&b, "- Median duration: %.0f min\n", r.Quality.MedianDuration)
		fmt.Fprintf(&b, "- Fastest hunt: %d min\n", r.Quality.FastestHunt)
		fmt.Fprintf(&b, "- Slowest hunt: %d min\n\n", r.Quality.SlowestHunt)
	}

	b.WriteString("## Role utilization\n\n")
	if len(r.RoleUtilization) == 0 {
		b.WriteString("No recorded work.\n\n")
	} else {
		b.WriteString("| Role | Tasks | Completed | Total (min) | Average (min) |\n")
		b.WriteString("|------|-------|-----------|-------------|---------------|\n")
		for _, s := range r.RoleUtilization {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %.1f |\n",
				s.Role, s.TaskCount, s.CompletedTasks, s.TotalMinutes, s.AverageMinutes)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Phase analysis\n\n")
	if len(r.PhaseAnalysis) == 0 {
		b.WriteString("No recorded phases.\n\n")
	} else {
		b.WriteString("| Phase | Count | Total (min) | Average (min) | Min | Max |\n")
		b.WriteString("|-------|-------|-------------|---------------|-----|-----|\n")
		for _, s := range r.PhaseAnalysis {
			fmt.Fprintf(&b, "| %s | %d | %d | %.1f | %d | %d |\n",
				s.Phase, s.Count, s.TotalMinutes, s.AverageMinutes, s.MinMinutes, s.MaxMinutes)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Bottlenecks\n\n")
	if len(r.Bottlenecks) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		for _, bn := range r.Bottlenecks {
			fmt.Fprintf(&b, "- **%s** (severity %s, avg %.1f min): %s\n",
				bn.Role, bn.Severity, bn.AverageMinutes, bn.Recommendation)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("Keep hunting.\n")
	} else {
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}
