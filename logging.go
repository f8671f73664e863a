package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dhcgn/mbox-to-postgres/config"
)

// setupLogger returns a text logger tagged with runID. With a log directory
// the output is also written to a file named after the start time and run.
func setupLogger(cfg config.Config, runID string) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = os.Stdout
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		file, err := openLogFile(cfg.LogDir, runID, time.Now())
		if err != nil {
			return nil, cleanup, err
		}
		out = io.MultiWriter(os.Stdout, file)
		cleanup = file.Close
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run", runID), cleanup, nil
}

func openLogFile(dir, runID string, started time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	name := fmt.Sprintf("mbox-to-postgres-%s-%s.log", started.Format("20060102T150405"), shortRunID(runID))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
