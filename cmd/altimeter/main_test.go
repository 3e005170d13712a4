package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"altimeter/pkg/config"
	"altimeter/pkg/sensor"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "altimeter.yaml")

	tempConfig := fmt.Sprintf(`
server:
    address: localhost:0  # 0 lets OS choose free port
log:
    server:
        path: %[1]q
        level: "debug"
    requests:
        path: %[2]q
        level: "info"
    events:
        path: %[3]q
db:
    path: %[4]q
sensor:
    provider: synthetic
    pacing: true
    record: true
    synthetic:
        interval: 10ms
`,
		filepath.Join(dir, "server.log"),
		filepath.Join(dir, "requests.log"),
		filepath.Join(dir, "events.log"),
		filepath.Join(dir, "altimeter.db"),
	)
	if err := os.WriteFile(cfgPath, []byte(tempConfig), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	// Cancel quickly to verify the startup sequence
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "altimeter.db")); err != nil {
		t.Errorf("Expected database to be created: %v", err)
	}
}

func TestRun_MissingRecording(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "altimeter.yaml")
	tempConfig := fmt.Sprintf(`
log:
    server:
        path: %[1]q
    requests:
        path: %[2]q
    events:
        path: %[3]q
db:
    path: %[4]q
sensor:
    provider: replay
    replay_file: %[5]q
`,
		filepath.Join(dir, "server.log"),
		filepath.Join(dir, "requests.log"),
		filepath.Join(dir, "events.log"),
		filepath.Join(dir, "altimeter.db"),
		filepath.Join(dir, "missing.csv"),
	)
	if err := os.WriteFile(cfgPath, []byte(tempConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(context.Background(), cfgPath)
	if err == nil || !strings.Contains(err.Error(), "startup checks failed") {
		t.Fatalf("Expected startup check failure, got %v", err)
	}
}

func TestRunReplay(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	p := sensor.Profile{
		StartAltitude: 100,
		Interval:      100 * time.Millisecond,
		Segments: []sensor.Segment{
			{Duration: 5 * time.Second},
			{Duration: 5 * time.Second, VerticalSpeed: 3},
		},
	}
	samples, err := sensor.Collect(ctx, sensor.NewSynthetic(p, false))
	if err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "flight.csv")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	if err := sensor.WriteCSV(f, samples); err != nil {
		t.Fatal(err)
	}
	f.Close()

	opts := replayOptions{
		Input:  input,
		Plot:   filepath.Join(dir, "flight.png"),
		Vario:  filepath.Join(dir, "flight.wav"),
		Render: filepath.Join(dir, "face.png"),
	}
	var out bytes.Buffer
	if err := runReplay(ctx, config.DefaultConfig(), &out, opts); err != nil {
		t.Fatalf("runReplay() failed: %v", err)
	}

	if !strings.Contains(out.String(), "samples over") {
		t.Errorf("Expected summary in output, got %q", out.String())
	}
	for _, path := range []string{opts.Plot, opts.Vario, opts.Render} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Expected %s: %v", filepath.Base(path), err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to have content", filepath.Base(path))
		}
	}
}

func TestRunReplay_MissingInput(t *testing.T) {
	var out bytes.Buffer
	err := runReplay(context.Background(), config.DefaultConfig(), &out, replayOptions{Input: filepath.Join(t.TempDir(), "nope.csv")})
	if err == nil {
		t.Fatal("Expected error for missing recording")
	}
}
