package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", *DefaultConfig(), false},
		{"json stdout", Config{Level: DebugLevel, Format: JSONFormat, Output: StdoutOutput}, false},
		{"bad level", Config{Level: "loud", Format: TextFormat, Output: StderrOutput}, true},
		{"bad format", Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"file without path", Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
		{"file with path", Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput, File: "x.log"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func newJSONLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := NewWithWriter(&Config{Level: DebugLevel, Format: JSONFormat, Output: StdoutOutput, DisableTimestamp: true}, buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid json log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestWithFieldsAreKept(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.WithComponent("reconciler").WithField("rows", 3).Info("done")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["component"] != "reconciler" {
		t.Errorf("expected component field, got %v", entries[0]["component"])
	}
	if entries[0]["rows"] != float64(3) {
		t.Errorf("expected rows field 3, got %v", entries[0]["rows"])
	}
}

func TestActionCarriesID(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	err := Run("petty", l, func(a *Action) error {
		a.Step("load", Fields{"rows": 2})
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error to be returned")
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	id := entries[0]["action_id"]
	if id == nil || id == "" {
		t.Fatal("expected action_id on start entry")
	}
	for i, e := range entries {
		if e["action_id"] != id {
			t.Errorf("entry %d: expected action_id %v, got %v", i, id, e["action_id"])
		}
	}
	if entries[2]["status"] != "error" {
		t.Errorf("expected error status, got %v", entries[2]["status"])
	}
}
