package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})
	logger.Info("chunks indexed", "count", 7)

	output := buf.String()
	if !strings.Contains(output, "chunks indexed") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "count=7") {
		t.Errorf("expected output to contain count=7, got: %s", output)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo, JSON: true})
	logger.Info("query complete", "sources", 5)

	output := buf.String()
	if !strings.Contains(output, `"msg":"query complete"`) {
		t.Errorf("expected JSON output with msg field, got: %s", output)
	}
	if !strings.Contains(output, `"sources":5`) {
		t.Errorf("expected JSON output with sources field, got: %s", output)
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}

	// Must not panic, must not write anywhere visible.
	logger.Info("discarded")
	logger.Error("also discarded")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})
	logger.With("component", "retriever").Info("retrieved")

	if !strings.Contains(buf.String(), "component=retriever") {
		t.Errorf("expected component attribute, got: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Debug("below threshold")
	logger.Info("at threshold")

	output := buf.String()
	if strings.Contains(output, "below threshold") {
		t.Error("DEBUG message should be filtered out at INFO level")
	}
	if !strings.Contains(output, "at threshold") {
		t.Error("INFO message should appear")
	}
}
