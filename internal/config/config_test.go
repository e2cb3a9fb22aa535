package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flickbridge/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scanner.Workers != 4 {
		t.Fatalf("expected default scanner workers, got %d", cfg.Scanner.Workers)
	}
	if cfg.Commons.APIURL == "" {
		t.Fatal("expected default commons api url")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
index_dir = "` + dir + `/index"
log_dir = "` + dir + `/logs"

[scanner]
workers = 8

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scanner.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.Scanner.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized level, got %q", cfg.Logging.Level)
	}
	if cfg.Reconcile.RatePerSecond != 2.0 {
		t.Fatalf("expected default rate, got %v", cfg.Reconcile.RatePerSecond)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
format = "yaml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected format validation error, got %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when file exists")
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "env-key")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Flickr.APIKey != "env-key" {
		t.Fatalf("expected env override, got %q", cfg.Flickr.APIKey)
	}
}
