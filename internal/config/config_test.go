package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Engine.PersistDebounce != 500*time.Millisecond || cfg.Engine.RestSyncInterval != time.Second {
		t.Fatalf("unexpected engine defaults: %+v", cfg.Engine)
	}
	if cfg.History.CacheSize != 128 || cfg.History.Limit != 50 {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
	if !strings.HasSuffix(cfg.Database.Path, "liftr.db") {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Fatalf("empty path should use defaults: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/liftr-test.db
logging:
  level: debug
  format: text
  file: "-"
engine:
  persist_debounce: 250ms
  rest_sync_interval: 200ms
history:
  cache_size: 16
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "/tmp/liftr-test.db" || cfg.Logging.Level != "debug" || cfg.Logging.File != "-" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Engine.PersistDebounce != 250*time.Millisecond || cfg.Engine.RestSyncInterval != 200*time.Millisecond {
		t.Fatalf("durations not parsed: %+v", cfg.Engine)
	}
	if cfg.History.CacheSize != 16 || cfg.History.Limit != 50 {
		t.Fatalf("unexpected history: %+v", cfg.History)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LIFTR_LOGGING_LEVEL", "warn")
	t.Setenv("LIFTR_HISTORY_CACHE_SIZE", "7")
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" || cfg.History.CacheSize != 7 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"level", "logging:\n  level: loud\n"},
		{"format", "logging:\n  format: xml\n"},
		{"debounce", "engine:\n  persist_debounce: 0s\n"},
		{"sync too slow", "engine:\n  rest_sync_interval: 5s\n"},
		{"cache", "history:\n  cache_size: 0\n"},
		{"bad duration", "engine:\n  persist_debounce: soon\n"},
		{"bad yaml", "logging: [\n"},
	}
	for _, tt := range tests {
		if _, err := Load(writeConfig(t, tt.body)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
