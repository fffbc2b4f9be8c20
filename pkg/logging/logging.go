// Package logging configures structured logging for the groupcard server.
//
// Development builds log colored, human-readable lines with tint; production
// logs JSON for log shippers.
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger for the given environment and returns it.
func Setup(env string) *slog.Logger {
	var logger *slog.Logger
	if env == "production" {
		logger = New(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")), true)
	} else {
		logger = New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), false)
	}
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w. json selects machine-readable output;
// otherwise lines are colored with tint.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// ParseLevel maps a LOG_LEVEL value to a level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
