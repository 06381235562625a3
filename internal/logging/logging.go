// Package logging builds the process logger: slog text to stdout, plus an
// optional rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talgya/mini-market/internal/config"
)

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch name {
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

// New creates the logger described by cfg. The returned closer flushes the
// log file and must be called on shutdown.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		// Fallback to stdout if the log directory cannot be created
		logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
		logger.Warn("log file disabled", "file", cfg.File, "error", err)
		return logger, nopCloser{}
	}

	fileLogger := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // Megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // Days
		Compress:   cfg.Compress,
	}

	writer := io.MultiWriter(os.Stdout, fileLogger)
	return slog.New(slog.NewTextHandler(writer, opts)), fileLogger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
