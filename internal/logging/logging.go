// Package logging builds the slog loggers of the service, the CLI and the bot.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// New returns a JSON logger for format "json" and a text logger otherwise.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds the logger from the configured names and makes it the
// default. An unknown level falls back to info and is reported.
func Setup(w io.Writer, level, format string) *slog.Logger {
	lvl, err := ParseLevel(level)
	logger := New(w, lvl, format)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("invalid log level, using info", "level", level)
	}
	return logger
}
