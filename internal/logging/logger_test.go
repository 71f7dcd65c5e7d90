package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := NewLogger(&Config{
		LogDir:    dir,
		FileLevel: zapcore.InfoLevel,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.ForWorkflow("signin", 1).Info("scenario finished", String("field", "uid"))
	logger.Debug("filtered out")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("Expected log file, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), data)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %v", err)
	}
	if entry["workflow"] != "signin" {
		t.Errorf("Expected workflow=signin, got %v", entry["workflow"])
	}
	if entry["attempt"] != float64(1) {
		t.Errorf("Expected attempt=1, got %v", entry["attempt"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("Expected timestamp key in log entry")
	}
}

func TestNewObservedLogger(t *testing.T) {
	logger, logs := NewObservedLogger(zapcore.WarnLevel)

	logger.Info("ignored")
	logger.Named("engine").Warn("timeout", String("selector", "#message"))

	if logs.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.LoggerName != "engine" {
		t.Errorf("Expected logger name engine, got %q", entry.LoggerName)
	}
	if entry.ContextMap()["selector"] != "#message" {
		t.Errorf("Expected selector field, got %v", entry.ContextMap())
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q): expected %v, got %v", in, want, got)
		}
	}
}
