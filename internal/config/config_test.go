package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "multiping/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.HardTimeout() != 2*cfg.SoftTimeout {
		t.Fatalf("HardTimeout() = %v", cfg.HardTimeout())
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
interval: 500ms
soft_timeout: 8s
ping_timeout: 6s
row_width: 80
history: false
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval != 500*time.Millisecond {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.SoftTimeout != 8*time.Second || cfg.HardTimeout() != 16*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.SoftTimeout, cfg.HardTimeout())
	}
	if cfg.RowWidth != 80 || cfg.History || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.PingCommand != "ping" || cfg.SlowThreshold != time.Second {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "interval: [nope\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval"},
		{"ping outlives soft timeout", func(c *Config) { c.PingTimeout = 5 * time.Second }, "ping_timeout"},
		{"sub-second ping timeout", func(c *Config) { c.PingTimeout = 500 * time.Millisecond }, "ping_timeout"},
		{"narrow rows", func(c *Config) { c.RowWidth = 3 }, "row_width"},
		{"empty command", func(c *Config) { c.PingCommand = "" }, "ping_command"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"no checkpoint", func(c *Config) { c.HistoryCheckpoint = 0 }, "history_checkpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, pkgerrors.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			var cerr *pkgerrors.ConfigError
			if !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Fatalf("Validate() = %v, want field %q", err, tt.field)
			}
		})
	}
}
