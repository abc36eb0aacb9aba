package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterTagsApp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "Siaga")

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn, got %s", buf.String())
	}

	logger.Warn("account locked", slog.Int64("user_id", 7))
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["app"] != "Siaga" || entry["msg"] != "account locked" || entry["user_id"] != float64(7) {
		t.Fatalf("unexpected entry %v", entry)
	}
}
