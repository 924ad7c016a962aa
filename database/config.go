package database

import (
	"fmt"
	"strings"
	"time"
)

// Memory is the Path of a private in-memory database.
const Memory = ":memory:"

// DefaultPath is where the journal lives when no path is configured.
const DefaultPath = "/data/user_storage/journal.db"

// Config holds the journal database settings.
type Config struct {
	// Path is the sqlite file. Memory keeps everything in process.
	Path string `mapstructure:"path" yaml:"path"`

	// BusyTimeout is how long a write waits on a locked file (e.g. "5s").
	BusyTimeout string `mapstructure:"busy_timeout" yaml:"busy_timeout"`

	// MaxRetries is the number of open attempts before giving up.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold" yaml:"slow_query_threshold"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.BusyTimeout == "" {
		c.BusyTimeout = "5s"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
}

// Validate checks that durations parse and the log level is known.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy_timeout %q: %w", c.BusyTimeout, err)
	}
	if _, err := time.ParseDuration(c.SlowQueryThreshold); err != nil {
		return fmt.Errorf("invalid slow_query_threshold %q: %w", c.SlowQueryThreshold, err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	return nil
}

// DSN returns the sqlite connection string with foreign keys on.
func (c *Config) DSN() string {
	busy, _ := time.ParseDuration(c.BusyTimeout)
	params := fmt.Sprintf("_foreign_keys=on&_busy_timeout=%d", busy.Milliseconds())
	if c.Path == Memory {
		return "file::memory:?" + params
	}
	return "file:" + c.Path + "?" + params
}
