package sensor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altimeter/pkg/baro"
)

const recording = `timestamp_ns,pressure_mb
# ground run
1000000000,1013.25
1100000000, 1013.10

1200000000,1012.95
`

func TestReplay_ReadsSamples(t *testing.T) {
	r := NewReplay(strings.NewReader(recording))
	samples, err := Collect(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, []Sample{
		{Pressure: 1013.25, Timestamp: 1000000000},
		{Pressure: 1013.10, Timestamp: 1100000000},
		{Pressure: 1012.95, Timestamp: 1200000000},
	}, samples)

	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestReplay_NoHeader(t *testing.T) {
	r := NewReplay(strings.NewReader("5,900\n6,901\n"))
	samples, err := Collect(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestReplay_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"BadPressure", "ts,p\n1,abc\n"},
		{"NegativePressure", "ts,p\n1,-5\n"},
		{"NaNPressure", "ts,p\n1,1013.25\n2,NaN\n"},
		{"InfPressure", "ts,p\n1,+Inf\n"},
		{"OneField", "ts,p\n1,1000\n2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(context.Background(), NewReplay(strings.NewReader(tt.input)))
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReplay(strings.NewReader(recording)).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplay_Paced(t *testing.T) {
	r := NewReplay(strings.NewReader("0,1000\n30000000,1000\n"), WithPacing(true))
	ctx := context.Background()

	start := time.Now()
	_, err := r.Next(ctx)
	require.NoError(t, err)
	_, err = r.Next(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestReplay_FileRoundTrip(t *testing.T) {
	in := []Sample{{Pressure: 1001.5, Timestamp: 10}, {Pressure: 1001.25, Timestamp: 20}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	path := filepath.Join(t.TempDir(), "rec.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := OpenReplay(path)
	require.NoError(t, err)
	defer r.Close()

	out, err := Collect(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = OpenReplay(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestProfile_AltitudeAt(t *testing.T) {
	p := Profile{
		StartAltitude: 100,
		Segments: []Segment{
			{Duration: 10 * time.Second, VerticalSpeed: 2},
			{Duration: 10 * time.Second},
			{Duration: 10 * time.Second, VerticalSpeed: -1},
		},
	}
	assert.Equal(t, 30*time.Second, p.Duration())

	tests := []struct {
		t    time.Duration
		want float64
	}{
		{0, 100},
		{5 * time.Second, 110},
		{10 * time.Second, 120},
		{15 * time.Second, 120},
		{25 * time.Second, 115},
		{time.Minute, 110},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, p.AltitudeAt(tt.t), 1e-9, "t=%v", tt.t)
	}
}

func TestSynthetic_FollowsProfile(t *testing.T) {
	p := Profile{
		SeaLevel:      1013.25,
		StartAltitude: 0,
		Interval:      time.Second,
		Segments:      []Segment{{Duration: 4 * time.Second, VerticalSpeed: 10}},
	}
	samples, err := Collect(context.Background(), NewSynthetic(p, false))
	require.NoError(t, err)
	require.Len(t, samples, 5)

	for i, s := range samples {
		assert.Equal(t, int64(i+1)*int64(time.Second), s.Timestamp)
		assert.InDelta(t, float64(i*10), baro.PressureToAltitude(1013.25, s.Pressure), 1e-6)
	}
}

func TestSynthetic_Loop(t *testing.T) {
	p := Profile{
		SeaLevel: 1000,
		Interval: time.Second,
		Segments: []Segment{{Duration: 2 * time.Second, VerticalSpeed: 1}},
		Loop:     true,
	}
	s := NewSynthetic(p, false)
	ctx := context.Background()

	var last int64
	for i := 0; i < 10; i++ {
		smp, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, smp.Timestamp, last)
		last = smp.Timestamp
	}
}

func TestSynthetic_PacedCancel(t *testing.T) {
	p := DefaultProfile()
	p.Interval = time.Hour
	s := NewSynthetic(p, true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)
	require.NoError(t, err, "first sample is immediate")
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
