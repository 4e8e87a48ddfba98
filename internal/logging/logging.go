// Package logging configures the process-wide slog logger used by the
// cmd/ example programs. The core soundio package never calls into this
// package; its Context logs through whatever slog default logger is in
// place when NewContext runs.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// Configure installs a process-wide slog default logger at the given level,
// optionally directed at a file instead of stdout.
//
// Valid levels are "none", "error", "warn", "info", "debug". logFile may be
// empty (log to stdout as text) or a path to open for writing (logged as
// JSON lines). The returned *os.File, if non-nil, must be closed by the
// caller on shutdown.
func Configure(level string, logFile string, opts slog.HandlerOptions) (*os.File, error) {
	switch level {
	case "none":
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	case "error":
		opts.Level = slog.LevelError
	case "warn":
		opts.Level = slog.LevelWarn
	case "info":
		opts.Level = slog.LevelInfo
	case "debug":
		opts.Level = slog.LevelDebug
	default:
		return nil, errors.New("logging: unrecognized level " + level)
	}

	if logFile == "" {
		return nil, setDefault(slog.NewTextHandler(os.Stdout, &opts))
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := setDefault(slog.NewJSONHandler(f, &opts)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func setDefault(h slog.Handler) error {
	slog.SetDefault(slog.New(h))
	return nil
}
