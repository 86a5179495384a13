package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"logvault-hq/logvault/pkg/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("store opened", "path", "logs.db")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entry["msg"] != "store opened" {
		t.Errorf("Expected message in output, got %v", entry["msg"])
	}
	if entry["path"] != "logs.db" {
		t.Errorf("Expected attribute in output, got %v", entry["path"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("sweep completed", "deleted", 3)

	out := buf.String()
	if !strings.Contains(out, "sweep completed") || !strings.Contains(out, "deleted=3") {
		t.Errorf("Unexpected text output: %q", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("Info message leaked past warn level")
	}
	if !strings.Contains(out, "emitted") {
		t.Error("Warn message missing")
	}
}

func TestNew_EmptyDefaults(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{}, &buf)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Debug("below default level")
	if buf.Len() != 0 {
		t.Errorf("Expected debug suppressed at default level, got %q", buf.String())
	}

	logger.Info("at default level")
	if buf.Len() == 0 {
		t.Error("Expected info emitted at default level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "verbose"}, nil); err == nil {
		t.Fatal("Expected error for unknown level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Fatal("Expected error for unknown format")
	}
}
