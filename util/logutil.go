package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel maps debug, info, warn and error to a slog.Level. Anything else is info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitSlog sends logs to stderr at the level given by LOG_LEVEL. Without
// LOG_LEVEL the default logger is left alone.
func InitSlog() {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return
	}
	SetLogLevel(ParseLogLevel(logLevel))
}

// SetLogLevel installs a text handler on stderr logging at level and above.
func SetLogLevel(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
