package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide structured logger. Subsystems receive a child
// scoped with Component rather than the root logger.
type Logger struct {
	*slog.Logger
}

// New builds a logger writing to stdout. Format "json" selects the JSON
// handler, anything else human-readable text.
func New(level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Component returns a child logger tagged with a subsystem name, so log
// lines from the payment gateway, outbox publisher, and sweeper can be
// told apart.
func (l *Logger) Component(name string) *slog.Logger {
	return l.Logger.With("component", name)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
