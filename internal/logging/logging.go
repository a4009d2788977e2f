package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// New creates a console slog.Logger with the provided level string.
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler)
}

// NewWithFile creates a logger that writes to stdout and to a timestamped
// run log under dir. The returned closer releases the log file; a file
// setup failure degrades to console-only logging.
func NewWithFile(level, dir string) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	if dir == "" {
		return New(level), noop
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger := New(level)
		logger.Warn("cannot create log directory, console only", "dir", dir, "error", err)
		return logger, noop
	}

	name := fmt.Sprintf("run_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		logger := New(level)
		logger.Warn("cannot create log file, console only", "error", err)
		return logger, noop
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), &slog.HandlerOptions{
		Level: levelFromString(level),
	})
	return slog.New(handler), file.Close
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
