// Package logger builds the process-wide slog.Logger from a log mode name.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Mode selects the handler a Logger is built with.
type Mode uint8

const (
	ModeDev Mode = iota
	ModeProd
	ModeSilence
)

// ParseMode maps "dev", "prod" and "silence" to a Mode. Anything else is
// ModeDev.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production", "json":
		return ModeProd
	case "silence", "silent", "off", "none":
		return ModeSilence
	default:
		return ModeDev
	}
}

// String returns the config name of m.
func (m Mode) String() string {
	switch m {
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "dev"
	}
}

// New returns a logger for mode.
func New(mode Mode) *slog.Logger {
	return slog.New(buildHandler(mode, os.Stdout, os.Stderr))
}

// buildHandler writes JSON at info level to stdout in prod, text at debug
// level to stderr in dev, and nothing when silenced.
func buildHandler(mode Mode, stdout, stderr io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4})
	default:
		return slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
