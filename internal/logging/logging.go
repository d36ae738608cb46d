// Package logging builds the zerolog logger shared by the server and stores.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config string to a zerolog level.
// Supported values (case-insensitive): debug, info, warn, error. Unknown values mean info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing to stderr: human-readable console output in
// the local env, JSON lines elsewhere.
func New(level, env string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if env == "local" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter returns a JSON logger on w.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Str("service", "cookbook").Logger()
}

// Printf adapts a zerolog.Logger to the Printf-style Logger interfaces
// (blob factory). Lines starting with WARN/FATAL/ERROR keep their level.
type Printf struct {
	Logger zerolog.Logger
}

func (p Printf) Printf(format string, v ...any) {
	ev := p.Logger.Info()
	switch {
	case strings.HasPrefix(format, "WARN"):
		ev = p.Logger.Warn()
	case strings.HasPrefix(format, "FATAL"), strings.HasPrefix(format, "ERROR"):
		ev = p.Logger.Error()
	}
	ev.Msgf(format, v...)
}
