package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tunepull/internal/config"
	"tunepull/internal/logging"
	"tunepull/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesStateLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "pipeline").Info("batch started", logging.Int("records", 3))

	content := readLog(t, cfg.LogPath())
	if !strings.Contains(content, "INFO pipeline: batch started") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "records=3") {
		t.Fatalf("expected attribute, got %q", content)
	}
}

func TestConsoleLoggerCallerOnlyForDebug(t *testing.T) {
	for _, level := range []string{"info", "debug"} {
		logPath := filepath.Join(t.TempDir(), "console.log")
		logger, err := logging.New(logging.Options{Format: "console", Level: level, OutputPaths: []string{logPath}})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Info("message")
		hasCaller := strings.Contains(readLog(t, logPath), ".go:")
		if hasCaller != (level == "debug") {
			t.Fatalf("level %s: caller present=%v", level, hasCaller)
		}
	}
}

func TestJSONLoggerAddsContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithRecordIndex(ctx, 2)
	ctx = services.WithStage(ctx, "tag")
	logger.InfoContext(ctx, "tagged", logging.String("path", "/tmp/x.m4a"))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry[logging.FieldRunID] != "run-1" {
		t.Fatalf("missing run id: %v", entry)
	}
	if entry[logging.FieldRecordIndex] != float64(2) {
		t.Fatalf("missing record index: %v", entry)
	}
	if entry[logging.FieldStage] != "tag" {
		t.Fatalf("missing stage: %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", entry["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(context.Background(), logger, "record failed", "record_failed")

	content := readLog(t, logPath)
	for _, fragment := range []string{"event_type=record_failed", "error_hint=\"check logs for details\""} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected no-op logger to be disabled")
	}
}
