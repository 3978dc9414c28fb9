// Package log configures the process-wide structured logger for the graph
// core and its hosts.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger. An interactive editor session wants
// text output; format "json" suits headless runs feeding a collector.
// Unknown levels fall back to info.
func Setup(logLevel, format string) {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// WithModule returns a logger tagged with the component it serves.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
