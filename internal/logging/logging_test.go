package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("debug msg", nil)
	logger.Info("info msg", nil)
	logger.Warn("warn msg", nil)
	logger.Error("error msg", nil)

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("messages below warn leaked through: %q", out)
	}
	if !strings.Contains(out, "warn msg") || !strings.Contains(out, "error msg") {
		t.Errorf("warn and error should pass the filter: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("plan complete", map[string]interface{}{
		"modules": 5,
		"edition": "community",
	})

	var entry struct {
		Timestamp string                 `json:"timestamp"`
		Level     string                 `json:"level"`
		Message   string                 `json:"message"`
		Fields    map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry.Level != "info" || entry.Message != "plan complete" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["edition"] != "community" {
		t.Errorf("fields = %v", entry.Fields)
	}
	if entry.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: DebugLevel, Output: &buf})

	logger.Warn("registry fallback", map[string]interface{}{
		"version": "16.0",
		"dir":     "registry",
	})

	out := buf.String()
	if !strings.Contains(out, "[warn] registry fallback") {
		t.Errorf("missing level/message: %q", out)
	}
	// fields print in sorted key order
	dirIdx := strings.Index(out, "dir=registry")
	verIdx := strings.Index(out, "version=16.0")
	if dirIdx == -1 || verIdx == -1 || dirIdx > verIdx {
		t.Errorf("fields out of order or missing: %q", out)
	}
}

func TestNoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("starting", nil)

	if strings.Contains(buf.String(), "|") {
		t.Errorf("field separator printed without fields: %q", buf.String())
	}
}
