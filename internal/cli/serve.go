package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packworks/packtrack/internal/dashboard"
	"github.com/packworks/packtrack/internal/logger"
	"github.com/packworks/packtrack/internal/registry"
	"github.com/packworks/packtrack/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live dashboard server",
	Long:  "Serves the REST API and a WebSocket event stream. Hunts created or\nmoved through this process are pushed to connected clients as they happen.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides the config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := mustConfig()
	if err != nil {
		return err
	}

	log := logger.New("dashboard")
	hub := dashboard.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	r, err := cfg.Roster()
	if err != nil {
		return err
	}
	var store storage.Store
	if store, err = openStore(cfg); err != nil {
		return err
	}
	defer store.Close()

	reg, err := registry.Open(cfg.Pack.Name, r, store, hub)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.DashboardAddr()
	}

	srv := dashboard.NewServer(reg, hub, log)
	if err := srv.ListenAndServe(addr); err != nil {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}
