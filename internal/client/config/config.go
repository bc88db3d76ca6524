// Package config holds client settings. Sources apply in order: defaults,
// an optional YAML file, MEDICNOTE_* environment variables, then command-line
// flags set by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the client
type Config struct {
	Server        string        `yaml:"server"`
	DBPath        string        `yaml:"db"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	Timeout       time.Duration `yaml:"timeout"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// LoadDefaults populates Config with local development defaults
func (c *Config) LoadDefaults() {
	c.Server = "http://localhost:8080"
	c.DBPath = "medicnote-client.db"
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.Timeout = 10 * time.Second
	c.ProbeInterval = 30 * time.Second
}

// LoadFile overlays the values present in the YAML file at path
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays MEDICNOTE_* variables found by lookup
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MEDICNOTE_SERVER"); ok {
		c.Server = v
	}
	if v, ok := lookup("MEDICNOTE_DB"); ok {
		c.DBPath = v
	}
	if v, ok := lookup("MEDICNOTE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("MEDICNOTE_LOG_FORMAT"); ok {
		c.LogFormat = v
	}

	var errs []error
	if v, ok := lookup("MEDICNOTE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDICNOTE_TIMEOUT: %w", err))
		}
		c.Timeout = d
	}
	if v, ok := lookup("MEDICNOTE_PROBE_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MEDICNOTE_PROBE_INTERVAL: %w", err))
		}
		c.ProbeInterval = d
	}
	return errors.Join(errs...)
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.Server)
	}
	if c.DBPath == "" {
		return errors.New("database path cannot be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.ProbeInterval <= 0 {
		return errors.New("probe interval must be positive")
	}
	return nil
}

// Load builds a Config from defaults, the optional file and the process
// environment. Flags are applied by the caller on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
