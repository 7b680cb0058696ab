package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ParseLevel parses debug, info, warn or error. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// Setup configures a JSON logger writing to logFile, with correlation
// attributes injected from the context. The slide display owns the terminal,
// so logs never go to stdout. "-" writes to stderr and "" discards output.
// Returns a logger and a cleanup function to close the file handle.
func Setup(logFile string, level slog.Level) (*slog.Logger, func(), error) {
	var w io.Writer
	cleanup := func() {}

	switch logFile {
	case "":
		w = io.Discard
	case "-":
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		cleanup = func() {
			_ = f.Close()
		}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(NewCorrelationHandler(handler))

	return logger, cleanup, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSessionID returns a fresh presentation session ID.
func NewSessionID() string {
	return uuid.NewString()
}
