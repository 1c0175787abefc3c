package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, "info", FormatJSON)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	l.WithField("tick", 3).Info("stepped")
	l.Debug("hidden")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "stepped" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["tick"] != float64(3) {
		t.Errorf("tick = %v", entry["tick"])
	}
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, "debug", "")
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := NewWithWriter(&bytes.Buffer{}, "loud", FormatText); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := NewWithWriter(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for bad format")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped")
}
