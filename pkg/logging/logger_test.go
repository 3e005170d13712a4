package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"altimeter/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")
	eventLog := filepath.Join(tempDir, "events.log")

	if err := os.WriteFile(serverLog, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: serverLog, Level: "DEBUG"},
		Requests: config.LogSettings{Path: requestLog, Level: "INFO"},
		Events:   config.LogSettings{Path: eventLog},
	}

	prev := slog.Default()
	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() {
		cleanup()
		slog.SetDefault(prev)
		SetEventLogPath("")
	}()

	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}
	old, err := os.ReadFile(serverLog + ".old")
	if err != nil || string(old) != "previous run\n" {
		t.Errorf("previous log not rotated: %q %v", old, err)
	}
	if RequestLogger == nil {
		t.Error("RequestLogger was not initialized")
	}

	slog.Info("kollsman set", "mb", 1013.25)
	if got := GlobalLogCapture.GetLastLine(); !strings.Contains(got, "kollsman set") {
		t.Errorf("capture missed the last line: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	SetEventLogPath(path)
	defer SetEventLogPath("")

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	LogEvent(KollsmanEvent(ts, "29.92", "30.01"))
	LogEvent(InopEvent(ts, true))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[2026-03-01 12:00:00] [kollsman] Set 29.92 - from 30.01\n[2026-03-01 12:00:00] [inop] INOP - no recent pressure samples\n"
	if string(data) != want {
		t.Errorf("unexpected event log:\n%s", data)
	}
	if got := GlobalEventCapture.GetLastLine(); got != "[2026-03-01 12:00:00] [inop] INOP - no recent pressure samples" {
		t.Errorf("unexpected captured event %q", got)
	}
}

func TestLogEvent_NoPath(t *testing.T) {
	SetEventLogPath("")
	LogEvent(InopEvent(time.Now(), false))
}

func TestInopEvent_Cleared(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	if got := InopEvent(ts, false).String(); got != "[2026-03-01 12:00:05] [inop] Operative" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Trace(logger, "frame")
	if buf.Len() != 0 {
		t.Error("trace should be silent by default")
	}

	EnableTrace = true
	defer func() { EnableTrace = false }()
	Trace(logger, "frame", "n", 1)
	if !strings.Contains(buf.String(), "frame") {
		t.Error("trace should log when enabled")
	}
}
