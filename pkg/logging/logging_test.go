package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelWarn, "json"))

	logger.Info("dropped")
	logger.Warn("kept", "group_id", "g1")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"group_id":"g1"`) {
		t.Errorf("expected JSON attrs, got %s", out)
	}
	if !NewHandler(&buf, slog.LevelDebug, "text").Enabled(context.Background(), slog.LevelDebug) {
		t.Error("text handler should honour level")
	}
}
