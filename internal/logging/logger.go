// Package logging builds the zerolog logger used by the pk1 CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/imacdo2212/EdTech/internal/config"
)

// EnvLogLevel overrides the configured level when set to a known value.
const EnvLogLevel = "PK1_LOG_LEVEL"

// New returns a logger writing to w according to cfg.
// An unknown level falls back to info.
func New(cfg config.Log, w io.Writer) zerolog.Logger {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	if env, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = env
	}

	out := w
	if cfg.Format != config.FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", "pk1").
		Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "disabled", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
