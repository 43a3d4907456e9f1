package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:       "info",
		Format:      "json",
		Output:      &buf,
		ServiceName: "clipforge-test",
	})

	log.Info("hello", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("expected msg=hello, got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key=value, got %v", entry["key"])
	}
	if entry["service"] != "clipforge-test" {
		t.Errorf("expected service=clipforge-test, got %v", entry["service"])
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  "info",
		Format: "text",
		Output: &buf,
	})

	log.Info("plain message")

	if !strings.Contains(buf.String(), "plain message") {
		t.Errorf("expected text output to contain message, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:  "warn",
		Format: "json",
		Output: &buf,
	})

	log.Debug("debug msg")
	log.Info("info msg")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("warn msg")
	if !strings.Contains(buf.String(), "warn msg") {
		t.Error("expected warn message to be logged")
	}
}

func TestWithJobID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.WithJobID("job-123").Info("working")

	if !strings.Contains(buf.String(), `"job_id":"job-123"`) {
		t.Errorf("expected job_id attribute, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithJobID(ctx, "job-2")

	log.FromContext(ctx).Info("enriched")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("expected request_id attribute, got %q", out)
	}
	if !strings.Contains(out, `"job_id":"job-2"`) {
		t.Errorf("expected job_id attribute, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
