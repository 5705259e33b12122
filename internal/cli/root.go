package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "packtrack",
	Short: "Adaptive phase tracking for small teams",
	Long: "packtrack — phase tracking for packs of 1 to 4 people.\n" +
		"The workflow adapts to your team size: solo packs get merged columns,\nfull packs get one role per person.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(huntCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}
