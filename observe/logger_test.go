package observe

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	entry := map[string]any{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", line, err)
	}
	return entry
}

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	l.Info(context.Background(), "call completed", Field{Key: "status", Value: 200})

	entry := decodeLine(t, buf.String())
	if entry["msg"] != "call completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v", entry["status"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp missing")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)

	l.Debug(context.Background(), "dropped")
	l.Info(context.Background(), "dropped")
	l.Warn(context.Background(), "kept")
	l.Error(context.Background(), "kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	l.Info(context.Background(), "authorization configured",
		Field{Key: "token", Value: "super-secret"},
		Field{Key: "authorization", Value: "Bearer abc"},
		Field{Key: "scheme", Value: "Bearer"},
	)

	entry := decodeLine(t, buf.String())
	if entry["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want redacted", entry["token"])
	}
	if entry["authorization"] != "[REDACTED]" {
		t.Errorf("authorization = %v, want redacted", entry["authorization"])
	}
	if entry["scheme"] != "Bearer" {
		t.Errorf("scheme = %v, want passed through", entry["scheme"])
	}
}

func TestLogger_WithEndpoint(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)

	scoped := l.WithEndpoint(EndpointMeta{Name: "BillingService", Address: "https://billing.internal"})
	scoped.Info(context.Background(), "retrying")

	entry := decodeLine(t, buf.String())
	if entry["endpoint.name"] != "BillingService" {
		t.Errorf("endpoint.name = %v", entry["endpoint.name"])
	}
	if entry["endpoint.address"] != "https://billing.internal" {
		t.Errorf("endpoint.address = %v", entry["endpoint.address"])
	}

	// The parent logger is unaffected.
	buf.Reset()
	l.Info(context.Background(), "plain")
	entry = decodeLine(t, buf.String())
	if _, ok := entry["endpoint.name"]; ok {
		t.Error("parent logger should not carry endpoint context")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
