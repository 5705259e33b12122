package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/analytics"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the pack analytics report",
	Long:  "Computes velocity, role utilization, quality metrics, phase analysis,\nand bottlenecks over every recorded hunt.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "markdown", "output format: markdown or json")
}

func runReport(cmd *cobra.Command, args []string) error {
	reg, store, err := mustRegistry(nil)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := analytics.NewFromSnapshot(reg.Snapshot())
	report := engine.TeamReport(reg.PackName())

	switch reportFormat {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(data))
	case "markdown":
		fmt.Print(analytics.FormatReportAsMarkdown(report))
	default:
		return fmt.Errorf("format must be markdown or json, got %q", reportFormat)
	}
	return nil
}
