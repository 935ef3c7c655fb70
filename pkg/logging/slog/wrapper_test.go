package slog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/butter-bot-machines/desim/pkg/logging"
)

func TestWrapperLevelsAndOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(logging.LevelInfo, &buf)

	log.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("debug below level should be suppressed, got %q", buf.String())
	}

	log.Info("hello", "n", 1)
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" || entry["n"] != float64(1) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestWrapperWithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := New(logging.LevelDebug, &buf).WithGroup("worker-1").With("id", 7)
	log.Warn("advanced")
	if !strings.Contains(buf.String(), "worker-1") {
		t.Fatalf("expected group name in output: %s", buf.String())
	}
}

func TestWrapperSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(logging.LevelError, &buf)
	if log.GetLevel() != logging.LevelError {
		t.Fatalf("expected error level")
	}
	log.SetLevel(logging.LevelDebug)
	log.Debug("now visible")
	if buf.Len() == 0 {
		t.Fatal("expected debug output after SetLevel")
	}
}
