package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: 1
pack:
  name: nightpack
members:
  - username: alice
  - username: bob
  - username: carol
storage:
  backend: json
  path: hunts.json
dashboard:
  addr: ":9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pack.Name != "nightpack" {
		t.Errorf("expected pack nightpack, got %q", cfg.Pack.Name)
	}
	if len(cfg.Members) != 3 {
		t.Errorf("expected 3 members, got %d", len(cfg.Members))
	}
	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("expected json backend, got %q", cfg.Storage.Backend)
	}
	if cfg.DashboardAddr() != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.DashboardAddr())
	}
}

func TestLoad_MissingPackName(t *testing.T) {
	path := writeConfig(t, `
version: 1
members:
  - username: alice
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing pack name")
	}
}

func TestLoad_TooManyMembers(t *testing.T) {
	path := writeConfig(t, `
version: 1
pack:
  name: nightpack
members:
  - username: a
  - username: b
  - username: c
  - username: d
  - username: e
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for more than four members")
	}
}

func TestLoad_DuplicateMember(t *testing.T) {
	path := writeConfig(t, `
version: 1
pack:
  name: nightpack
members:
  - username: alice
  - username: alice
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate username")
	}
}

func TestLoad_BadBackend(t *testing.T) {
	path := writeConfig(t, `
version: 1
pack:
  name: nightpack
members:
  - username: alice
storage:
  backend: postgres
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig("nightpack", "alice")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Pack.Name != "nightpack" || len(loaded.Members) != 1 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestRoster(t *testing.T) {
	cfg := DefaultConfig("nightpack", "alice")
	r, err := cfg.Roster()
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if r.Size() != 1 {
		t.Errorf("expected size 1, got %d", r.Size())
	}
}

func TestDashboardAddr_Default(t *testing.T) {
	cfg := DefaultConfig("nightpack", "alice")
	if cfg.DashboardAddr() != DefaultAddr {
		t.Errorf("expected default addr, got %q", cfg.DashboardAddr())
	}
}
