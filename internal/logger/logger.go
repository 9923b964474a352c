// Package logger sets up the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance, JSON-structured on stdout.
var L *slog.Logger

// Init initializes the global logger at the given level. Call once at
// startup, after loading config.
func Init(levelStr string) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
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
		slog.Warn("invalid log level, defaulting to info", "configured", levelStr)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	L = slog.New(handler)
	slog.SetDefault(L)
}
