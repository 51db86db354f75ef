// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Used while the TUI owns the terminal.
func NewFileLogger(path string) (*log.Logger, error) {
	w, err := NewRotatingWriter(LogConfig{File: path})
	if err != nil {
		return nil, err
	}
	return NewLogger(w), nil
}

// NewRotatingWriter returns a size-rotated writer for cfg.File. Zero limits fall back to lumberjack's defaults.
func NewRotatingWriter(cfg LogConfig) (io.WriteCloser, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("%w: log file path is empty", ErrInvalidConfig)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}

// NewConfiguredLogger logs to stderr and, when cfg.File is set, to the rotated file as well.
func NewConfiguredLogger(cfg LogConfig) (*log.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := NewRotatingWriter(cfg)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stderr, file)
	}

	logger := NewLogger(w)
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		logger.SetLevel(level)
	}
	return logger, nil
}

// DiscardLogger returns a [log.Logger] that drops everything.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
