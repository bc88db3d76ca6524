// Package config holds server settings. Sources apply in order: defaults,
// MEDICNOTE_* environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

// MinSecretLen is the shortest accepted JWT secret
const MinSecretLen = 32

// Config holds runtime settings for the server
type Config struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	LogLevel        string
	LogFormat       string
	TokenTTL        time.Duration
	AuthRateWindow  time.Duration
	ShutdownTimeout time.Duration
	AuthRateLimit   int
}

// LoadDefaults populates Config with local development defaults
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DBPath = "medicnote-server.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.TokenTTL = 24 * time.Hour
	c.AuthRateLimit = 20
	c.AuthRateWindow = time.Minute
	c.ShutdownTimeout = 5 * time.Second
}

// LoadEnv overlays MEDICNOTE_* variables found by lookup
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MEDICNOTE_SERVER_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup("MEDICNOTE_SERVER_DB"); ok {
		c.DBPath = v
	}
	if v, ok := lookup("MEDICNOTE_JWT_SECRET"); ok {
		c.JWTSecret = v
	}
	if v, ok := lookup("MEDICNOTE_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("MEDICNOTE_LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := lookup("MEDICNOTE_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MEDICNOTE_TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	return nil
}

// ParseFlags overlays command-line flags. Unset flags keep the current values.
func (c *Config) ParseFlags(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to listen on")
	fs.StringVar(&c.DBPath, "d", c.DBPath, "path to the SQLite database")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT HMAC secret")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text, json)")
	fs.DurationVar(&c.TokenTTL, "t", c.TokenTTL, "access token lifetime")
	fs.IntVar(&c.AuthRateLimit, "auth-rate", c.AuthRateLimit, "auth requests per client IP and window")

	return fs.Parse(args)
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path cannot be empty"))
	}
	if len(c.JWTSecret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("JWT secret must be at least %d characters (set MEDICNOTE_JWT_SECRET)", MinSecretLen))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetime must be positive"))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("auth rate limit must be positive"))
	}
	return errors.Join(errs...)
}

// Load merges defaults, the process environment and args, then validates
func Load(name string, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.LoadEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ParseFlags(name, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
