// Package logging sets up the process-wide slog logger. The terminal belongs
// to the panel, so records go to a rotating file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the log file.
type Options struct {
	File       string
	Verbose    bool
	MaxSizeMB  int
	MaxBackups int
}

// Setup installs a text logger writing to opts.File as the slog default.
// The returned closer flushes and closes the file.
func Setup(opts Options) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	slog.SetDefault(New(w, opts.Verbose))
	return w, nil
}

// New returns a text logger at info level, or debug level when verbose.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
