// Package config reads and writes the packtrack project configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/packworks/packtrack/internal/roster"
	"github.com/packworks/packtrack/internal/topology"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the root configuration for a packtrack project.
type Config struct {
	Version   int       `yaml:"version"`
	Pack      Pack      `yaml:"pack"`
	Members   []Member  `yaml:"members"`
	Storage   Storage   `yaml:"storage"`
	Dashboard Dashboard `yaml:"dashboard,omitempty"`
}

// Pack names the team the hunts belong to.
type Pack struct {
	Name string `yaml:"name"`
}

// Member is one person on the pack, in roster order. Order matters: the
// topology assigns columns positionally.
type Member struct {
	Username string    `yaml:"username"`
	JoinedAt time.Time `yaml:"joined_at,omitempty"`
}

// Storage selects the persistence backend.
type Storage struct {
	Backend string `yaml:"backend"`        // "json" or "sqlite"
	Path    string `yaml:"path,omitempty"` // backing file, relative to the project root
}

// Dashboard configures the optional live dashboard server.
type Dashboard struct {
	Addr string `yaml:"addr,omitempty"` // listen address, default :8423
}

// DefaultAddr is the dashboard listen address when none is configured.
const DefaultAddr = ":8423"

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config for a solo pack.
func DefaultConfig(packName, username string) *Config {
	return &Config{
		Version: 1,
		Pack:    Pack{Name: packName},
		Members: []Member{{Username: username, JoinedAt: time.Now().UTC()}},
		Storage: Storage{Backend: BackendJSON, Path: "hunts.json"},
	}
}

func (c *Config) validate() error {
	if c.Pack.Name == "" {
		return fmt.Errorf("pack.name is required")
	}
	if err := topology.ValidateTeamSize(len(c.Members)); err != nil {
		return fmt.Errorf("members: %w", err)
	}
	seen := make(map[string]bool, len(c.Members))
	for i, m := range c.Members {
		if m.Username == "" {
			return fmt.Errorf("members[%d]: username is required", i)
		}
		if seen[m.Username] {
			return fmt.Errorf("members[%d]: duplicate username %q", i, m.Username)
		}
		seen[m.Username] = true
	}
	switch c.Storage.Backend {
	case "", BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Storage.Backend)
	}
	return nil
}

// Roster builds the team roster from the configured members.
func (c *Config) Roster() (*roster.Roster, error) {
	members := make([]roster.Member, len(c.Members))
	for i, m := range c.Members {
		members[i] = roster.Member{Username: m.Username, JoinedAt: m.JoinedAt}
	}
	return roster.New(members)
}

// DashboardAddr returns the configured dashboard address or the default.
func (c *Config) DashboardAddr() string {
	if c.Dashboard.Addr != "" {
		return c.Dashboard.Addr
	}
	return DefaultAddr
}
