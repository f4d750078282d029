// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the root logger. It discards everything until Init is called.
var Logger = zerolog.Nop()

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name (debug, info, warn, error). Empty means warn.
	Level string

	// Format is "console" or "json".
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init builds the root logger from cfg.
func Init(cfg Config) {
	Logger = New(cfg)
}

// New builds a logger from cfg without touching the root logger.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a level name, falling back to warn.
func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

// Component returns a child of the root logger tagged with component.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
