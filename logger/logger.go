// SPDX-License-Identifier: EPL-2.0

// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrick/logrotate/rotator"
)

type Options struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is text or json.
	Format string
	// File, when set, receives a copy of every record. It is rotated once it
	// reaches MaxSizeKB, keeping MaxRolls old files.
	File      string
	MaxSizeKB int64
	MaxRolls  int

	// Out defaults to stderr.
	Out io.Writer
}

// Logger is the configured logger plus the log file it writes to, if any.
type Logger struct {
	*slog.Logger
	rotator *rotator.Rotator
}

// Setup builds a logger from opts and installs it as slog's default.
func Setup(opts Options) (*Logger, error) {
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l.Logger)
	return l, nil
}

// New builds a logger from opts without touching the default.
func New(opts Options) (*Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var r *rotator.Rotator
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		size := opts.MaxSizeKB
		if size <= 0 {
			size = 1024
		}
		var err error
		r, err = rotator.New(opts.File, size, false, opts.MaxRolls)
		if err != nil {
			return nil, fmt.Errorf("creating log rotator: %w", err)
		}
		out = io.MultiWriter(out, r)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler), rotator: r}, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

func ParseLevel(level string) slog.Level {
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

// WithComponent returns a child of the default logger tagged with
// component.
func WithComponent(component string) *slog.Logger {
	return slog.With("component", component)
}
