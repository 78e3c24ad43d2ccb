package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"  WARN  ", slog.LevelWarn},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func newBufferLogger(level string) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(&buf, levelVar, false)), &buf
}

func TestConsoleHandlerOutputShape(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger = NewComponentLogger(logger, "playback")

	logger.Info("seek applied", Float64("target", 3.5), String(FieldSessionID, "s-1"))

	line := buf.String()
	if !strings.Contains(line, "INFO playback: seek applied") {
		t.Errorf("line missing level/component prefix: %q", line)
	}
	if !strings.Contains(line, "target=3.5") || !strings.Contains(line, "session_id=s-1") {
		t.Errorf("line missing attrs: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should be a prefix, not a key=value: %q", line)
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	logger, buf := newBufferLogger("warn")
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info leaked through warn gate: %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("warn suppressed: %q", buf.String())
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger.Info("msg", String("url", "https://cdn.example.com/a b.jpg"))
	if !strings.Contains(buf.String(), `url="https://cdn.example.com/a b.jpg"`) {
		t.Errorf("value with spaces not quoted: %q", buf.String())
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger.With(slog.Group("frame", Int("index", 7))).Info("drawn")
	if !strings.Contains(buf.String(), "frame.index=7") {
		t.Errorf("group keys not flattened: %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger should never be enabled")
	}
	logger.Error("goes nowhere", Error(nil))
}
