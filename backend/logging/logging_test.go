package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"talkie/server/backend/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleAndFileSinks(t *testing.T) {
	color.NoColor = true
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer

	logger, closer := newLogger(config.LoggingConfig{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1}, &console)
	logger.Debug("debug only on console")
	logger.Info("client connected", slog.String("sid", "abc"))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := console.String()
	if !strings.Contains(out, "debug only on console") || !strings.Contains(out, "client connected") {
		t.Fatalf("console output missing records: %q", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("file should hold only info and above, got %d lines: %q", len(lines), raw)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	if rec["msg"] != "client connected" || rec["sid"] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNoFileSink(t *testing.T) {
	var console bytes.Buffer
	logger, closer := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &console)
	defer closer.Close()

	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(console.String(), "dropped") {
		t.Fatalf("info record should be filtered at warn level")
	}
	if !strings.Contains(console.String(), `"msg":"kept"`) {
		t.Fatalf("warn record missing: %q", console.String())
	}
}

func TestDerivedLoggerReachesBothSinks(t *testing.T) {
	color.NoColor = true
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer

	logger, closer := newLogger(config.LoggingConfig{Level: "info", File: path}, &console)
	logger.With("component", "relay").WithGroup("req").Info("completion recorded", "conversation_id", 7)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(console.String(), "component=relay") || !strings.Contains(console.String(), "req.conversation_id=7") {
		t.Errorf("console output %q", console.String())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &rec); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	group, _ := rec["req"].(map[string]any)
	if rec["component"] != "relay" || group["conversation_id"] != float64(7) {
		t.Errorf("file record %v", rec)
	}
}
