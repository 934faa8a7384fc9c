package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formlayout.yaml")
	content := strings.Join([]string{
		"org: acme",
		"app: onboarding",
		"store:",
		"  driver: sqlite",
		"  dsn: file:layouts.db",
		"editor:",
		"  max_depth: 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvApp, "override")
	t.Setenv(EnvMaxDepth, "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Org != "acme" || cfg.App != "override" {
		t.Fatalf("unexpected org/app: %#v", cfg)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "file:layouts.db" {
		t.Fatalf("unexpected store: %#v", cfg.Store)
	}
	if cfg.Editor.MaxDepth != 5 {
		t.Fatalf("env override not applied: %d", cfg.Editor.MaxDepth)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("defaults should survive partial files: %#v", cfg.Logging)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvStoreDriver, "postgres")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "store.dsn") {
		t.Fatalf("expected dsn error, got %v", err)
	}

	t.Setenv(EnvStoreDriver, "redis")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown driver error")
	}

	t.Setenv(EnvStoreDriver, "fs")
	t.Setenv(EnvMaxDepth, "deep")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected max depth parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formlayout.yaml")
	cfg := Defaults()
	cfg.Org = "acme"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}
