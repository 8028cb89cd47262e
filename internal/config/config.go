// Package config loads pk1.toml.
//
// Values in the file overlay Default(); keys the file does not mention keep
// their defaults. Unknown keys are an error so that typos never silently
// fall back to a default.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/imacdo2212/EdTech/internal/pk1"
)

// Config is the full pk1.toml layout.
type Config struct {
	Limits Limits `toml:"limits"`
	Log    Log    `toml:"log"`
	Store  Store  `toml:"store"`
}

// Limits mirrors pk1.Limits in file-friendly units.
type Limits struct {
	MaxRecordBytes      int `toml:"max_record_bytes"`
	MaxFragmentBytes    int `toml:"max_fragment_bytes"`
	FreshnessWindowDays int `toml:"freshness_window_days"`
}

// Log configures internal/logging.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Store configures the CLI's snapshot database.
type Store struct {
	Path string `toml:"path"`
}

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxRecordBytes:      32 * 1024,
			MaxFragmentBytes:    1024,
			FreshnessWindowDays: 30,
		},
		Log: Log{
			Level:  "info",
			Format: FormatConsole,
		},
		Store: Store{
			Path: "pk1.db",
		},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse is Load for in-memory TOML.
func Parse(data string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Limits.MaxRecordBytes <= 0 {
		return fmt.Errorf("limits.max_record_bytes must be positive")
	}
	if c.Limits.MaxFragmentBytes <= 0 {
		return fmt.Errorf("limits.max_fragment_bytes must be positive")
	}
	if c.Limits.MaxFragmentBytes > c.Limits.MaxRecordBytes {
		return fmt.Errorf("limits.max_fragment_bytes (%d) exceeds limits.max_record_bytes (%d)",
			c.Limits.MaxFragmentBytes, c.Limits.MaxRecordBytes)
	}
	if c.Limits.FreshnessWindowDays < 0 {
		return fmt.Errorf("limits.freshness_window_days must not be negative")
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", FormatConsole, FormatJSON, c.Log.Format)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}

// PK1Limits converts the limits section for pk1.WithLimits.
func (l Limits) PK1Limits() pk1.Limits {
	return pk1.Limits{
		MaxRecordBytes:   l.MaxRecordBytes,
		MaxFragmentBytes: l.MaxFragmentBytes,
		FreshnessWindow:  time.Duration(l.FreshnessWindowDays) * 24 * time.Hour,
	}
}
