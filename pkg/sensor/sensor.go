// Package sensor provides pressure sample sources: a CSV replay of recorded
// samples and a synthetic flight profile.
package sensor

import (
	"context"
	"errors"
	"io"
	"time"
)

// Sample is one barometer reading.
type Sample struct {
	Pressure  float64 `json:"pressure_mb"`
	Timestamp int64   `json:"timestamp_ns"` // monotonic
}

// Source yields samples in order. Next returns io.EOF when the source is
// exhausted and ctx.Err() when cancelled.
type Source interface {
	Next(ctx context.Context) (Sample, error)
}

// ErrMalformed is returned for unparseable recorded samples.
var ErrMalformed = errors.New("malformed sample")

// Collect drains src into a slice.
func Collect(ctx context.Context, src Source) ([]Sample, error) {
	var out []Sample
	for {
		s, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, s)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
