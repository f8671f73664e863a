package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/dhcgn/mbox-to-postgres/config"
)

func TestSetupLoggerWritesRunFile(t *testing.T) {
	dir := t.TempDir()
	runID := "0f8fad5b-d9cb-469f-a165-70867728950e"

	logger, cleanup, err := setupLogger(config.Config{LogLevel: "warn", LogDir: dir}, runID)
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("log files = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "mbox-to-postgres-") || !strings.HasSuffix(name, "-0f8fad5b.log") {
		t.Errorf("log file name = %q", name)
	}

	data, err := os.ReadFile(dir + "/" + name)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if strings.Contains(text, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(text, "msg=visible") || !strings.Contains(text, "run="+runID) {
		t.Errorf("log = %q", text)
	}
}

func TestSetupLoggerLevel(t *testing.T) {
	logger, cleanup, err := setupLogger(config.Config{LogLevel: "debug"}, "run")
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	defer cleanup()
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug not enabled")
	}

	if _, _, err := setupLogger(config.Config{LogLevel: "verbose"}, "run"); err == nil {
		t.Error("expected error for unknown level")
	}
}
