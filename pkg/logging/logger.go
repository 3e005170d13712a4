package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"altimeter/pkg/config"
)

// RequestLogger receives one line per HTTP request.
var RequestLogger *slog.Logger

// Init opens the server and request logs, rotates the previous run's files
// to .old and points the event log at cfg.Events. The returned func closes
// the files.
func Init(cfg *config.LogConfig) (func(), error) {
	for _, p := range []string{cfg.Server.Path, cfg.Requests.Path, cfg.Events.Path} {
		rotate(p)
	}
	SetEventLogPath(cfg.Events.Path)

	serverFile, err := openLog(cfg.Server.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to setup server logger: %w", err)
	}
	requestFile, err := openLog(cfg.Requests.Path)
	if err != nil {
		serverFile.Close()
		return nil, fmt.Errorf("failed to setup requests logger: %w", err)
	}

	// The console never drops below INFO so per-sample traces stay in the file.
	level := ParseLevel(cfg.Server.Level)
	slog.SetDefault(slog.New(fanout{
		fileHandler(serverFile, level),
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: max(level, slog.LevelInfo)}),
		slog.NewTextHandler(GlobalLogCapture, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}))
	RequestLogger = slog.New(fileHandler(requestFile, ParseLevel(cfg.Requests.Level)))

	return func() {
		for _, c := range []io.Closer{serverFile, requestFile} {
			c.Close()
		}
	}, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names are INFO.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func fileHandler(f *os.File, level slog.Level) slog.Handler {
	return slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
}

// rotate moves path to path.old, replacing an older one.
func rotate(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = os.Remove(path + ".old")
	_ = os.Rename(path, path+".old")
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Handler takes the record by value
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
