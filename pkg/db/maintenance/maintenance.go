package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"altimeter/pkg/db"
	"altimeter/pkg/sensor"
	"altimeter/pkg/store"
)

const importStateKey = "recording_import_mtime"

// DefaultRetention is how long recorded samples are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Run imports a recording, if one is given and changed since the last run,
// then prunes old samples. Failures are logged, not returned.
func Run(ctx context.Context, s store.Store, d *db.DB, importPath string, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	if importPath != "" {
		if n, err := importRecording(ctx, s, importPath); err != nil {
			slog.Error("Recording import failed", "path", importPath, "error", err)
		} else if n > 0 {
			slog.Info("Imported recording", "path", importPath, "samples", n)
		}
	}

	if retention <= 0 {
		retention = DefaultRetention
	}
	n, err := d.PruneSamples(retention)
	if err != nil {
		slog.Error("Sample pruning failed", "error", err)
	} else {
		slog.Info("Sample pruning completed", "removed", n)
	}

	return nil
}

// SessionName is the session a recording file is imported under.
func SessionName(path string) string {
	base := filepath.Base(path)
	return "import:" + strings.TrimSuffix(base, filepath.Ext(base))
}

func importRecording(ctx context.Context, s store.Store, path string) (int, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat recording: %w", err)
	}

	key := importStateKey + ":" + path
	mtime := info.ModTime().UTC().Format(time.RFC3339)
	if stored, found := s.GetState(ctx, key); found && stored == mtime {
		return 0, nil
	}

	r, err := sensor.OpenReplay(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	samples, err := sensor.Collect(ctx, r)
	if err != nil {
		return 0, err
	}

	// The session is fully derived from the file.
	session := SessionName(path)
	if err := s.ClearSamples(ctx, session); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", session, err)
	}
	if err := s.AppendSamples(ctx, session, samples); err != nil {
		return 0, err
	}

	if err := s.SetState(ctx, key, mtime); err != nil {
		return len(samples), fmt.Errorf("failed to update state: %w", err)
	}
	return len(samples), nil
}
