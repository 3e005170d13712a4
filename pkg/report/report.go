// Package report replays recorded pressure samples through the altitude
// filter and summarizes or plots the result.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"

	"altimeter/pkg/baro"
	"altimeter/pkg/sensor"
	"altimeter/pkg/vario"
)

// ErrEmpty is returned when a trace has no samples.
var ErrEmpty = errors.New("empty trace")

// Entry is the filter state after one sample.
type Entry struct {
	Time     time.Duration `json:"t"` // since the first sample
	Pressure float64       `json:"pressure_mb"`
	Altitude float64       `json:"altitude_m"`
	VSI      float64       `json:"vsi"`
}

// Trace is a replayed recording.
type Trace struct {
	Entries   []Entry
	Reference float64 // mB
	// Stale counts samples whose timestamp did not advance.
	Stale int
}

// Replay feeds every sample from src through f.
func Replay(ctx context.Context, src sensor.Source, f *baro.Filter) (*Trace, error) {
	tr := &Trace{Reference: f.Model().Reference()}

	var first int64
	for {
		s, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tr, nil
			}
			return tr, fmt.Errorf("replay stopped after %d samples: %w", len(tr.Entries), err)
		}

		if len(tr.Entries) == 0 {
			first = s.Timestamp
		} else if s.Timestamp <= f.LastSampleTime() {
			tr.Stale++
		}

		alt := f.Update(s.Pressure, s.Timestamp)
		tr.Entries = append(tr.Entries, Entry{
			Time:     time.Duration(s.Timestamp - first),
			Pressure: s.Pressure,
			Altitude: alt,
			VSI:      f.VSI(),
		})
	}
}

// Duration is the time spanned by the trace.
func (t *Trace) Duration() time.Duration {
	if len(t.Entries) == 0 {
		return 0
	}
	return t.Entries[len(t.Entries)-1].Time
}

// VarioPoints returns the vertical speed trace for audio rendering.
func (t *Trace) VarioPoints() []vario.Point {
	out := make([]vario.Point, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = vario.Point{Time: e.Time, VSI: e.VSI}
	}
	return out
}

// Summary describes a trace.
type Summary struct {
	Samples      int           `json:"samples"`
	Stale        int           `json:"stale"`
	Duration     time.Duration `json:"duration"`
	MinAltitude  float64       `json:"min_altitude_m"`
	MaxAltitude  float64       `json:"max_altitude_m"`
	MeanAltitude float64       `json:"mean_altitude_m"`
	MaxClimb     float64       `json:"max_climb"`
	MaxSink      float64       `json:"max_sink"`
	P95VSI       float64       `json:"p95_abs_vsi"`
}

// Summarize computes altitude and vertical speed statistics.
func Summarize(t *Trace) (Summary, error) {
	if len(t.Entries) == 0 {
		return Summary{}, ErrEmpty
	}

	alts := make(stats.Float64Data, len(t.Entries))
	vsis := make(stats.Float64Data, len(t.Entries))
	abs := make(stats.Float64Data, len(t.Entries))
	for i, e := range t.Entries {
		alts[i] = e.Altitude
		vsis[i] = e.VSI
		abs[i] = math.Abs(e.VSI)
	}

	s := Summary{Samples: len(t.Entries), Stale: t.Stale, Duration: t.Duration()}
	var err error
	if s.MinAltitude, err = alts.Min(); err != nil {
		return s, err
	}
	if s.MaxAltitude, err = alts.Max(); err != nil {
		return s, err
	}
	if s.MeanAltitude, err = alts.Mean(); err != nil {
		return s, err
	}
	if s.MaxClimb, err = vsis.Max(); err != nil {
		return s, err
	}
	if s.MaxSink, err = vsis.Min(); err != nil {
		return s, err
	}
	if s.P95VSI, err = abs.Percentile(95); err != nil {
		return s, err
	}
	return s, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("%s samples over %s (%s stale): altitude %.0f..%.0f m, mean %.0f m; vsi %+.1f..%+.1f m/s, p95 %.1f",
		humanize.Comma(int64(s.Samples)), s.Duration.Round(time.Second), humanize.Comma(int64(s.Stale)),
		s.MinAltitude, s.MaxAltitude, s.MeanAltitude, s.MaxSink, s.MaxClimb, s.P95VSI)
}
