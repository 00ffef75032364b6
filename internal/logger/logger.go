package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bank-reconciliation-engine/internal/config"
)

// NewLogger creates a JSON slog.Logger writing to stdout
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(cfg, os.Stdout)
}

// New builds the service logger on top of w. Every record carries the service name and environment
// so reconciliation pass logs from both binaries can be told apart.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if cfg.Application.Name != "" {
		logger = logger.With("service", cfg.Application.Name)
	}
	if cfg.Application.Env != "" {
		logger = logger.With("env", cfg.Application.Env)
	}

	logger.Info("logger initialized", "level", level)

	return logger
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
