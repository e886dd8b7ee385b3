// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a logger writing to stderr.
func New(cfg config.LoggingConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr, isTerminal(os.Stderr))
}

// NewWithWriter returns a logger writing to w. tty selects console output
// when the format is "auto".
func NewWithWriter(cfg config.LoggingConfig, w io.Writer, tty bool) zerolog.Logger {
	out := w
	switch strings.ToLower(cfg.Format) {
	case "console":
		out = consoleWriter(w)
	case "json":
	default:
		if tty {
			out = consoleWriter(w)
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
