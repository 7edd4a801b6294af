// ABOUTME: Printf-style level-gated logging over log/slog
// ABOUTME: Setup picks the handler and writer; the TUI owns the terminal so output usually goes to a file

package log

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level slog.LevelVar

	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: &level}))
)

// Setup installs a handler writing to w. format is "text" or "json"
// (default text). The stdlib log package is bridged into the same handler.
func Setup(levelStr, format string, w io.Writer) {
	level.Set(ParseLevel(levelStr))

	opts := &slog.HandlerOptions{Level: &level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	mu.Lock()
	logger = l
	mu.Unlock()

	stdlog.SetOutput(bridge{l})
	stdlog.SetFlags(0)
}

// SetupFromEnv reads LOG_LEVEL and LOG_FORMAT.
func SetupFromEnv(w io.Writer) {
	Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), w)
}

// ParseLevel converts a level name. Defaults to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return level.Level()
}

// Logger returns the underlying slog logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	emit(LevelDebug, format, args)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	emit(LevelInfo, format, args)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	emit(LevelWarn, format, args)
}

// Error logs an error message.
func Error(format string, args ...any) {
	emit(LevelError, format, args)
}

func emit(l slog.Level, format string, args []any) {
	if level.Level() > l {
		return
	}
	Logger().Log(context.Background(), l, fmt.Sprintf(format, args...))
}

type bridge struct {
	l *slog.Logger
}

func (b bridge) Write(p []byte) (int, error) {
	b.l.Info(strings.TrimRight(string(p), "\n"), "source", "stdlib")
	return len(p), nil
}
