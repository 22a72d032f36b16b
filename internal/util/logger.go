// internal/util/logger.go
package util

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(newLogger(slog.LevelInfo))
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// InitLogger initializes the global structured logger.
// It sets up a JSON handler for production-like logs at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func InitLogger(level string) {
	l := newLogger(ParseLogLevel(level))
	logger.Store(l)
	slog.SetDefault(l)
}

// GetLogger returns the global logger. Before InitLogger runs it logs at
// info level.
func GetLogger() *slog.Logger {
	return logger.Load()
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
