// Package logging builds the application logger. The TUI owns the terminal,
// so logs go to a file unless the file is "-".
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/liftr/internal/config"
)

// Setup configures the logger based on configuration. The returned closer
// releases the log file.
func Setup(cfg config.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var out io.WriteCloser = nopCloser{os.Stderr}
	toFile := cfg.File != "" && cfg.File != "-"
	if toFile {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	var w io.Writer = out
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: out, NoColor: toFile, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
