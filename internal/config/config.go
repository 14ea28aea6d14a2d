package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"multiping/internal/logging"
	"multiping/internal/paths"
	"multiping/internal/pinger"
	pkgerrors "multiping/pkg/errors"
)

// FileName is the config file looked up in the config directory.
const FileName = "config.yaml"

// Config holds the tunables for a monitoring run.
type Config struct {
	Interval time.Duration `yaml:"interval"`
	// SoftTimeout is when a running ping gets SIGTERM; it gets SIGKILL at
	// twice that age.
	SoftTimeout       time.Duration `yaml:"soft_timeout"`
	SlowThreshold     time.Duration `yaml:"slow_threshold"`
	PingCommand       string        `yaml:"ping_command"`
	PingTimeout       time.Duration `yaml:"ping_timeout"`
	RowWidth          int           `yaml:"row_width"`
	History           bool          `yaml:"history"`
	HistoryCheckpoint time.Duration `yaml:"history_checkpoint"`
	DBPath            string        `yaml:"db_path"`
	LogLevel          string        `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		Interval:          pinger.DefaultInterval,
		SoftTimeout:       pinger.DefaultSoftTimeout,
		SlowThreshold:     pinger.DefaultSlowThreshold,
		PingCommand:       "ping",
		PingTimeout:       pinger.DefaultPingTimeout,
		RowWidth:          60,
		History:           true,
		HistoryCheckpoint: 30 * time.Second,
		LogLevel:          "info",
	}
}

// DefaultPath returns ~/.config/multiping/config.yaml.
func DefaultPath() (string, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads a yaml config file on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// HardTimeout is the age at which a ping is killed outright.
func (c Config) HardTimeout() time.Duration {
	return pinger.HardTimeout(c.SoftTimeout)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(field, format string, args ...any) {
		errs = append(errs, &pkgerrors.ConfigError{
			Field: field,
			Err:   fmt.Errorf("%w: "+format, append([]any{pkgerrors.ErrInvalidConfig}, args...)...),
		})
	}

	if c.Interval <= 0 {
		invalid("interval", "must be positive, got %v", c.Interval)
	}
	if c.SoftTimeout <= 0 {
		invalid("soft_timeout", "must be positive, got %v", c.SoftTimeout)
	}
	if c.SlowThreshold <= 0 {
		invalid("slow_threshold", "must be positive, got %v", c.SlowThreshold)
	}
	if c.PingCommand == "" {
		invalid("ping_command", "must not be empty")
	}
	if c.PingTimeout < time.Second {
		invalid("ping_timeout", "must be at least 1s, got %v", c.PingTimeout)
	} else if c.PingTimeout >= c.SoftTimeout {
		invalid("ping_timeout", "must be shorter than soft_timeout (%v), got %v", c.SoftTimeout, c.PingTimeout)
	}
	if c.RowWidth < 10 {
		invalid("row_width", "must be at least 10, got %d", c.RowWidth)
	}
	if c.History && c.HistoryCheckpoint <= 0 {
		invalid("history_checkpoint", "must be positive, got %v", c.HistoryCheckpoint)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		invalid("log_level", "%v", err)
	}

	return errors.Join(errs...)
}
