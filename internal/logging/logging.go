// Package logging provides structured logging with slog for imebridge.
//
// Features:
//   - JSON and text output formats
//   - Log levels (debug, info, warn, error)
//   - Optional file output
//   - Component-scoped child loggers
//   - A categorised error reporter for the IME layer
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string

	// Format is "text" or "json".
	Format string

	// FilePath, when set, sends output to this file instead of stderr.
	FilePath string

	// AddSource adds source file and line to log entries.
	AddSource bool
}

// DefaultConfig returns the defaults: info-level text logs on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// Setup builds a logger from cfg. The returned closer is non-nil when a
// log file was opened and must be closed at shutdown.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}

// Component returns a child logger tagged with a component name.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}

// Reporter is the error-reporting sink for subsystems whose failures are
// advisory: every problem is logged with a category and swallowed.
type Reporter struct {
	log *slog.Logger
}

// NewReporter wraps log; nil means slog.Default.
func NewReporter(log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{log: log}
}

// Error reports a categorised, non-fatal error.
func (r *Reporter) Error(category string, err error) {
	r.log.Error(err.Error(), "category", category)
}

// Errorf is Error with formatting.
func (r *Reporter) Errorf(category, format string, args ...any) {
	r.log.Error(fmt.Sprintf(format, args...), "category", category)
}

// Debug logs a debug line with structured attributes.
func (r *Reporter) Debug(msg string, args ...any) {
	r.log.Debug(msg, args...)
}
