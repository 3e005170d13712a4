package report

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"altimeter/pkg/baro"
	"altimeter/pkg/sensor"
)

func climbProfile() sensor.Profile {
	return sensor.Profile{
		SeaLevel:      baro.StandardPressure,
		StartAltitude: 100,
		Interval:      100 * time.Millisecond,
		Segments: []sensor.Segment{
			{Duration: 10 * time.Second},
			{Duration: 10 * time.Second, VerticalSpeed: 5},
		},
	}
}

func replayClimb(t *testing.T) *Trace {
	t.Helper()
	tr, err := Replay(context.Background(), sensor.NewSynthetic(climbProfile(), false), baro.NewFilter())
	require.NoError(t, err)
	return tr
}

func TestReplay_Climb(t *testing.T) {
	tr := replayClimb(t)

	require.Len(t, tr.Entries, 201)
	assert.Equal(t, 20*time.Second, tr.Duration())
	assert.Equal(t, time.Duration(0), tr.Entries[0].Time)
	assert.Equal(t, 0, tr.Stale)
	assert.InDelta(t, baro.StandardPressure, tr.Reference, 1e-9)

	s, err := Summarize(tr)
	require.NoError(t, err)
	assert.Equal(t, 201, s.Samples)
	assert.InDelta(t, 100, s.MinAltitude, 0.01)
	// The damped estimate lags the climb by a few meters.
	assert.InDelta(t, 147, s.MaxAltitude, 1)
	assert.Greater(t, s.MeanAltitude, 100.0)
	assert.Less(t, s.MeanAltitude, s.MaxAltitude)
	assert.InDelta(t, 5, s.MaxClimb, 0.5)
	assert.InDelta(t, 0, s.MaxSink, 1e-6)
	assert.Greater(t, s.P95VSI, 4.0)

	assert.Contains(t, s.String(), "201 samples over 20s (0 stale)")
}

func TestReplay_CountsStaleTimestamps(t *testing.T) {
	csv := "timestamp_ns,pressure_mb\n" +
		"1000000000,1013.25\n" +
		"1100000000,1013.20\n" +
		"1100000000,1013.15\n" +
		"1050000000,1013.10\n" +
		"1200000000,1013.05\n"

	tr, err := Replay(context.Background(), sensor.NewReplay(strings.NewReader(csv)), baro.NewFilter())
	require.NoError(t, err)
	assert.Len(t, tr.Entries, 5)
	assert.Equal(t, 2, tr.Stale)
}

func TestReplay_PropagatesErrors(t *testing.T) {
	csv := "timestamp_ns,pressure_mb\n1000000000,1013.25\n1100000000,abc\n"

	tr, err := Replay(context.Background(), sensor.NewReplay(strings.NewReader(csv)), baro.NewFilter())
	require.ErrorIs(t, err, sensor.ErrMalformed)
	assert.Len(t, tr.Entries, 1)
}

func TestReplay_UsesKollsman(t *testing.T) {
	f := baro.NewFilter()
	f.SetReference(1000)

	tr, err := Replay(context.Background(), sensor.NewSynthetic(climbProfile(), false), f)
	require.NoError(t, err)
	assert.InDelta(t, 1000, tr.Reference, 1e-9)
	assert.Less(t, tr.Entries[0].Altitude, 0.0)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(&Trace{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestVarioPoints(t *testing.T) {
	tr := replayClimb(t)
	pts := tr.VarioPoints()
	require.Len(t, pts, len(tr.Entries))
	assert.Equal(t, 20*time.Second, pts[len(pts)-1].Time)
	assert.Equal(t, tr.Entries[150].VSI, pts[150].VSI)
}

func TestWritePlot(t *testing.T) {
	tr := replayClimb(t)

	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, tr, baro.Feet, 4*vg.Inch, 3*vg.Inch))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.Greater(t, img.Bounds().Dy(), img.Bounds().Dx()/2)

	assert.ErrorIs(t, WritePlot(&buf, &Trace{}, baro.Feet, vg.Inch, vg.Inch), ErrEmpty)
}

func TestSavePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.png")
	require.NoError(t, SavePlot(path, replayClimb(t), baro.Meters))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}
