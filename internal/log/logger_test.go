package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return logger, &buf
}

func TestLogger_TagsComponent(t *testing.T) {
	logger, buf := captureLogger(ComponentHTTP)

	logger.Info("request served", FieldStatusCode, 200)

	line := buf.String()
	if !strings.Contains(line, "component=http") {
		t.Errorf("log line %q should carry component=http", line)
	}
	if !strings.Contains(line, "status_code=200") {
		t.Errorf("log line %q should carry status_code=200", line)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	logger, buf := captureLogger(ComponentApp)

	worker := logger.WithComponent(ComponentWorker)
	worker.Warn("queue lagging")

	if got := worker.Component(); got != ComponentWorker {
		t.Errorf("Component() = %q, want %q", got, ComponentWorker)
	}
	if !strings.Contains(buf.String(), "component=worker") {
		t.Errorf("log line %q should carry component=worker", buf.String())
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.env)
		if got := levelFromEnv(); got != tt.want {
			t.Errorf("levelFromEnv() with LOG_LEVEL=%q = %v, want %v", tt.env, got, tt.want)
		}
	}
}
