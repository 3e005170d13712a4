package sensor

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"altimeter/pkg/baro"
)

// Replay reads recorded samples from CSV lines of
// timestamp_ns,pressure_mb. A header row and lines starting with # are
// skipped.
type Replay struct {
	r      *csv.Reader
	closer io.Closer
	paced  bool

	count   int
	header  bool
	started bool
	first   int64
	start   time.Time
}

// ReplayOption configures a Replay.
type ReplayOption func(*Replay)

// WithPacing replays samples in real time, spaced by their timestamps.
func WithPacing(on bool) ReplayOption {
	return func(r *Replay) { r.paced = on }
}

// NewReplay reads samples from r.
func NewReplay(r io.Reader, opts ...ReplayOption) *Replay {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	rp := &Replay{r: cr}
	for _, opt := range opts {
		opt(rp)
	}
	return rp
}

// OpenReplay opens a recorded CSV file.
func OpenReplay(path string, opts ...ReplayOption) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	rp := NewReplay(f, opts...)
	rp.closer = f
	return rp, nil
}

// Next returns the next recorded sample.
func (r *Replay) Next(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	for {
		rec, err := r.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Sample{}, io.EOF
			}
			return Sample{}, fmt.Errorf("failed to read replay: %w", err)
		}
		line, _ := r.r.FieldPos(0)

		s, err := parseRecord(rec)
		if err != nil {
			if r.count == 0 && !r.header {
				r.header = true
				continue
			}
			return Sample{}, fmt.Errorf("line %d: %w", line, err)
		}

		r.count++
		if r.paced {
			if err := r.wait(ctx, s.Timestamp); err != nil {
				return Sample{}, err
			}
		}
		return s, nil
	}
}

func (r *Replay) wait(ctx context.Context, ts int64) error {
	if !r.started {
		r.started = true
		r.first = ts
		r.start = time.Now()
		return nil
	}
	due := r.start.Add(time.Duration(ts - r.first))
	return sleep(ctx, time.Until(due))
}

// Close closes the underlying file, if Replay opened one.
func (r *Replay) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func parseRecord(rec []string) (Sample, error) {
	if len(rec) < 2 {
		return Sample{}, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformed, len(rec))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: timestamp %q", ErrMalformed, rec[0])
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil || !baro.ValidPressure(p) {
		return Sample{}, fmt.Errorf("%w: pressure %q", ErrMalformed, rec[1])
	}
	return Sample{Pressure: p, Timestamp: ts}, nil
}

// WriteCSV records samples in the format Replay reads.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp_ns", "pressure_mb"}); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			strconv.FormatInt(s.Timestamp, 10),
			strconv.FormatFloat(s.Pressure, 'f', 3, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
