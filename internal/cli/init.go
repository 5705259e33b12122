package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/config"
	"github.com/packworks/packtrack/internal/topology"
)

var (
	initPackName string
	initMembers  []string
	initBackend  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize packtrack in the current directory",
	Long:  "Creates a .packtrack/ directory with the pack config and an empty hunt store.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPackName, "pack", "", "pack name (required)")
	initCmd.Flags().StringSliceVar(&initMembers, "member", nil, "member username, repeatable, 1-4 in pipeline order")
	initCmd.Flags().StringVar(&initBackend, "backend", config.BackendJSON, "storage backend: json or sqlite")
	initCmd.MarkFlagRequired("pack")
	initCmd.MarkFlagRequired("member")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(packtrackDirName); err == nil {
		return fmt.Errorf("packtrack already initialized in this directory (.packtrack/ exists)")
	}
	if err := topology.ValidateTeamSize(len(initMembers)); err != nil {
		return err
	}

	if err := os.MkdirAll(packtrackDirName, 0755); err != nil {
		return fmt.Errorf("create %s: %w", packtrackDirName, err)
	}

	now := time.Now().UTC()
	cfg := &config.Config{
		Version: 1,
		Pack:    config.Pack{Name: initPackName},
		Storage: config.Storage{Backend: initBackend},
	}
	for _, username := range initMembers {
		cfg.Members = append(cfg.Members, config.Member{Username: username, JoinedAt: now})
	}
	switch initBackend {
	case config.BackendJSON:
		cfg.Storage.Path = "hunts.json"
	case config.BackendSQLite:
		cfg.Storage.Path = "hunts.db"
	default:
		return fmt.Errorf("backend must be %q or %q", config.BackendJSON, config.BackendSQLite)
	}

	if err := config.Save(packPath("config.yaml"), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Open the store once so the backing file exists before the first hunt.
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	store.Close()

	cols, err := topology.Columns(len(initMembers))
	if err != nil {
		return err
	}

	fmt.Printf("Initialized packtrack for pack %q (%d members)\n\n", initPackName, len(initMembers))
	fmt.Println("Pipeline:")
	for i, c := range cols {
		fmt.Printf("  %d. %s %s", i+1, c.Emoji, c.DisplayName)
		if c.Merged {
			fmt.Printf(" (merged: %s)", joinRoles(c.Roles))
		}
		fmt.Println()
	}
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("  1. Run: packtrack hunt create \"your feature\"")
	fmt.Println("  2. Run: packtrack board")

	return nil
}

func joinRoles(roles []topology.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ", "
		}
		out += string(r)
	}
	return out
}
