// Package config provides layered configuration for Eventlife: built-in
// defaults, an optional YAML file, then EVENTLIFE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/eventlife/eventlife/internal/notify"
)

// Config is the full runtime configuration.
type Config struct {
	// Timezone is the IANA zone used to resolve event time labels.
	// Empty means the system's local zone.
	Timezone string `koanf:"timezone"`

	// LeadMinutes is how many minutes before an event its reminder fires.
	LeadMinutes int `koanf:"lead_minutes"`

	Storage  StorageConfig    `koanf:"storage"`
	Daemon   DaemonConfig     `koanf:"daemon"`
	Webhooks []notify.Webhook `koanf:"webhooks"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	// Path is the database directory. Empty uses the XDG default.
	Path string `koanf:"path"`
	// InMemory forces an in-memory database.
	InMemory bool `koanf:"in_memory"`
}

// DaemonConfig holds daemon-mode settings.
type DaemonConfig struct {
	// Listen is the address the state bridge serves on.
	Listen string `koanf:"listen"`
	// RefreshCron is the re-arm schedule (six-field cron, with seconds).
	// Reminders resolve against "today", so the default re-arms at midnight.
	RefreshCron string `koanf:"refresh_cron"`
}

// envPrefix namespaces environment overrides.
const envPrefix = "EVENTLIFE_"

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "eventlife", "config.yaml")
}

// Load reads configuration from defaults, then the YAML file at configPath
// (skipped when absent), then environment variables. A double underscore in
// an environment name descends one config level: EVENTLIFE_DAEMON__LISTEN
// sets daemon.listen.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(defaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		configPath = DefaultPath()
	}
	configPath = expandPath(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.LeadMinutes <= 0 {
		return fmt.Errorf("lead_minutes must be positive, got %d", c.LeadMinutes)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	for i, wh := range c.Webhooks {
		if wh.URL == "" {
			return fmt.Errorf("webhook %d (%s): url is required", i, wh.Name)
		}
	}
	return nil
}

// Location resolves the configured timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
