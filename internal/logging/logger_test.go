package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arrimeta/internal/config"
	"arrimeta/internal/logging"
)

func TestConsoleLoggerFormatsComponentAndFile(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithFile(context.Background(), "/clips/A001/A001C003_0001.ari")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "extract"))
	log.Info("header decoded", logging.Int("fields", 12))

	out := buf.String()
	if !strings.Contains(out, "INFO [extract] A001C003_0001.ari – header decoded") {
		t.Fatalf("unexpected header line: %q", out)
	}
	if !strings.Contains(out, "    - Fields: 12") {
		t.Fatalf("expected fields line, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestConsoleLoggerHidesDebugOnlyFieldsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("batch started", logging.String("catalog_path", "/tmp/db"))

	out := buf.String()
	if strings.Contains(out, "run-123") || strings.Contains(out, "/tmp/db") {
		t.Fatalf("expected debug-only fields hidden, got %q", out)
	}
	if !strings.Contains(out, "+ 2 more fields hidden") {
		t.Fatalf("expected hidden count, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller", logging.String(logging.FieldRunID, "abc"))

	out := buf.String()
	if !strings.Contains(out, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
	if !strings.Contains(out, "    run_id: abc") {
		t.Fatalf("expected raw debug attributes, got %q", out)
	}
}

func TestJSONLoggerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "warn" || record["msg"] != "json message" || record["k"] != "v" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestComponentOverrideRaisesVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:           "warn",
		Output:          &buf,
		ComponentLevels: map[string]string{"catalog": "debug"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("root info is filtered")
	logging.NewComponentLogger(logger, "extract").Info("extract info is filtered")
	logging.NewComponentLogger(logger, "catalog").Debug("catalog debug is kept")

	out := buf.String()
	if strings.Contains(out, "filtered") {
		t.Fatalf("expected global level to filter info, got %q", out)
	}
	if !strings.Contains(out, "catalog debug is kept") {
		t.Fatalf("expected component override to allow debug, got %q", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logging.WarnWithContext(logger, "file skipped", "file_failed", logging.Error(errors.New("boom")))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"event_type":"file_failed"`) {
		t.Fatalf("expected event type in file log, got %s", data)
	}
	if !strings.Contains(console.String(), "Hint: check logs for details") {
		t.Fatalf("expected default hint on console, got %q", console.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "test")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected nop logger to be disabled")
	}
}

func TestContextHelpersFillOnlyMissingDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "catalog write retried", "catalog_retry",
		logging.String(logging.FieldErrorHint, "close other arrimeta processes"))
	logging.ErrorWithContext(logger, "catalog unavailable", "catalog_failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two records, got %q", buf.String())
	}
	warn, errLine := lines[0], lines[1]
	if strings.Count(warn, `"error_hint"`) != 1 || !strings.Contains(warn, "close other arrimeta processes") {
		t.Fatalf("caller hint must replace the default, got %s", warn)
	}
	if !strings.Contains(warn, `"impact":"operation completed with warnings"`) {
		t.Fatalf("expected default impact on warning, got %s", warn)
	}
	if !strings.Contains(errLine, `"event_type":"catalog_failed"`) || !strings.Contains(errLine, `"error_hint":"check logs for details"`) {
		t.Fatalf("expected defaults on error, got %s", errLine)
	}
	if strings.Contains(errLine, `"impact"`) {
		t.Fatalf("errors carry no default impact, got %s", errLine)
	}
}
