// Package logging builds the process-wide zerolog logger used across the
// simulator. Components derive their own loggers via With().
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New constructs the root logger. When console is true the human-readable
// writer is used, otherwise structured JSON goes to stderr.
func New(level string, console bool) zerolog.Logger {
	var writer io.Writer = os.Stderr
	if console {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	logger := zerolog.New(writer).With().Timestamp().Logger()
	return logger.Level(ParseLevel(level))
}

// ParseLevel maps a config string onto a zerolog level, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop returns a disabled logger for tests and optional dependencies.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
