package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/packworks/packtrack/internal/config"
	"github.com/packworks/packtrack/internal/event"
	"github.com/packworks/packtrack/internal/registry"
	"github.com/packworks/packtrack/internal/storage"
)

const packtrackDirName = ".packtrack"

// packPath returns the path to a file inside .packtrack/.
func packPath(parts ...string) string {
	elems := append([]string{packtrackDirName}, parts...)
	return filepath.Join(elems...)
}

// mustConfig loads the project config, returning an error if packtrack is not
// initialized in the current directory.
func mustConfig() (*config.Config, error) {
	cfgPath := packPath("config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("packtrack not initialized. Run: packtrack init")
	}
	return config.Load(cfgPath)
}

// mustRegistry loads the config and opens the registry over the configured
// storage backend. The caller must Close the returned store.
func mustRegistry(notifier event.Notifier) (*registry.Registry, storage.Store, error) {
	cfg, err := mustConfig()
	if err != nil {
		return nil, nil, err
	}
	r, err := cfg.Roster()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.Open(cfg.Pack.Name, r, store, notifier)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return reg, store, nil
}

// openStore builds the storage backend the config names.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path := cfg.Storage.Path
		if path == "" {
			path = "hunts.db"
		}
		return storage.NewSQLiteStore(packPath(path))
	case "", config.BackendJSON:
		path := cfg.Storage.Path
		if path == "" {
			path = "hunts.json"
		}
		return storage.NewFileStore(packPath(path)), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
