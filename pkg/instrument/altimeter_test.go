package instrument

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altimeter/pkg/baro"
	"altimeter/pkg/draw"
	"altimeter/pkg/draw/raster"
	"altimeter/pkg/wheel"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newAltimeter(t *testing.T, alt baro.AltitudeUnit, pres baro.PressureUnit) (*Altimeter, *clock) {
	t.Helper()
	c := &clock{now: epoch}
	a, err := New(Options{
		AltitudeUnits: alt,
		PressureUnits: pres,
		Font:          draw.MonoFont{Advance: 10, Cap: 12},
		Filter:        []baro.FilterOption{baro.WithClock(c.Now)},
	})
	require.NoError(t, err)
	a.Layout(400, 300)
	return a, c
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, baro.Feet, a.AltitudeUnits())
	assert.Equal(t, baro.InHg, a.PressureUnits())
	assert.Equal(t, baro.StandardPressure, a.Kollsman())
	assert.Equal(t, 2, a.Gauge().TrailingDigits(), "10 ft step")
}

func TestNew_InvalidUnits(t *testing.T) {
	_, err := New(Options{AltitudeUnits: "furlongs"})
	assert.True(t, errors.Is(err, ErrInvalidUnits))

	_, err = New(Options{PressureUnits: "torr"})
	assert.True(t, errors.Is(err, ErrInvalidUnits))

	a, _ := newAltimeter(t, baro.Feet, baro.InHg)
	assert.True(t, errors.Is(a.SetAltitudeUnits("yards"), ErrInvalidUnits))
	assert.True(t, errors.Is(a.SetPressureUnits("psi"), ErrInvalidUnits))
}

func TestSetAltitudeUnits_RebuildsGauge(t *testing.T) {
	a, _ := newAltimeter(t, baro.Feet, baro.InHg)
	before := a.Gauge().Outline().Bounds()

	require.NoError(t, a.SetAltitudeUnits(baro.Meters))
	assert.Equal(t, 1, a.Gauge().TrailingDigits(), "5 m step")
	assert.Equal(t, before.Left, a.Gauge().Outline().Bounds().Left, "keeps its place")

	g := a.Gauge()
	require.NoError(t, a.SetAltitudeUnits(baro.Meters))
	assert.Same(t, g, a.Gauge(), "no rebuild for the same unit")
}

func TestDisplayAltitude(t *testing.T) {
	a, _ := newAltimeter(t, baro.Feet, baro.InHg)
	a.SetKollsman(baro.StandardPressure)
	a.SetPressure(baro.AltitudeToPressure(baro.StandardPressure, 1000), 1)

	assert.InDelta(t, 1000, a.Reading().Altitude, 1e-6)
	assert.InDelta(t, 3280.8399, a.DisplayAltitude(), 1e-3)

	require.NoError(t, a.SetAltitudeUnits(baro.Meters))
	assert.InDelta(t, 1000, a.DisplayAltitude(), 1e-6)
}

func TestKollsmanLabel(t *testing.T) {
	tests := []struct {
		name  string
		units baro.PressureUnit
		mb    float64
		want  string
	}{
		{"Millibars", baro.Millibars, 1013.25, "1013"},
		{"MillibarsTruncates", baro.Millibars, 998.9, "998"},
		{"InHg", baro.InHg, 1013, "29.92"},
		{"InHgRounds", baro.InHg, 1000, "29.54"},
		{"InHgZeroPadded", baro.InHg, 300, "08.86"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newAltimeter(t, baro.Feet, tt.units)
			a.SetKollsman(tt.mb)
			assert.Equal(t, tt.want, a.KollsmanLabel())
		})
	}
}

func TestInoperative(t *testing.T) {
	a, c := newAltimeter(t, baro.Feet, baro.InHg)
	assert.True(t, a.Inoperative(epoch), "no sample yet")

	a.SetPressure(1000, 1)
	assert.False(t, a.Inoperative(epoch.Add(9*time.Second)))
	assert.True(t, a.Inoperative(epoch.Add(11*time.Second)), "stale")

	c.now = epoch.Add(20 * time.Second)
	a.SetPressure(1000, 2)
	assert.False(t, a.Inoperative(c.now))
}

func TestRender_Inop(t *testing.T) {
	a, c := newAltimeter(t, baro.Feet, baro.InHg)
	rec := draw.NewRecorder()
	a.Render(rec, c.now)

	var inop *draw.Command
	for _, cmd := range rec.Texts() {
		if cmd.Text == "INOP" {
			cmd := cmd
			inop = &cmd
		}
	}
	require.NotNil(t, inop)
	assert.Equal(t, draw.Red, inop.Color)
	// Centered: 40px wide text at x=200, cap 12 at y=150.
	assert.Equal(t, 180.0, inop.X)
	assert.Equal(t, 156.0, inop.Y)

	a.SetPressure(1013.25, 1)
	rec.Reset()
	a.Render(rec, c.now)
	for _, cmd := range rec.Texts() {
		assert.NotEqual(t, "INOP", cmd.Text)
	}
}

func TestRender_KollsmanWindow(t *testing.T) {
	a, c := newAltimeter(t, baro.Feet, baro.InHg)
	a.SetKollsman(1013)
	a.SetPressure(1013, 1)

	rec := draw.NewRecorder()
	a.Render(rec, c.now)

	// Window: 50px text + 10 padding wide, 12 cap + 10 padding tall, right
	// edge at 91% of 400.
	assert.Equal(t, draw.R(304, 139, 364, 161), a.KollsmanRect())

	var found bool
	for _, cmd := range rec.Texts() {
		if cmd.Text == "29.92" {
			found = true
			assert.Equal(t, 309.0, cmd.X, "right aligned inside the padding")
			assert.Equal(t, 156.0, cmd.Y)
			assert.Equal(t, draw.White, cmd.Color)
		}
	}
	assert.True(t, found)
}

func TestRender_GaugeShowsAltitude(t *testing.T) {
	a, c := newAltimeter(t, baro.Meters, baro.Millibars)
	a.SetPressure(baro.AltitudeToPressure(baro.StandardPressure, 120), 1)

	rec := draw.NewRecorder()
	a.Render(rec, c.now)

	// 120 m with a 5 m step: trailing "0" centered, leading "12" static.
	var texts []string
	for _, cmd := range rec.Texts() {
		texts = append(texts, cmd.Text)
	}
	assert.Contains(t, texts, "0")
	assert.Contains(t, texts, "2")
	assert.Contains(t, texts, "1")
	assert.Contains(t, texts, "1013")
}

func TestWheelRoundTrip(t *testing.T) {
	a, _ := newAltimeter(t, baro.Feet, baro.InHg)
	a.SetKollsman(1013)
	a.SetPressure(1013, 1)

	p := a.WheelParams()
	assert.Equal(t, wheel.Params{Initial: 2992, Min: 2700, Max: 3300, Barom: 2992, AltitudeScale: baro.MetersToFeet}, p)

	a.ApplyWheel(2992)
	assert.InDelta(t, 1013, a.Kollsman(), 1e-6)

	a.ApplyWheel(0)
	assert.InDelta(t, 1013, a.Kollsman(), 1e-6, "zero ignored")

	require.NoError(t, a.SetPressureUnits(baro.Millibars))
	p = a.WheelParams()
	assert.Equal(t, 1013, p.Initial)
	assert.Equal(t, 900, p.Min)

	a.ApplyWheel(1020)
	assert.Equal(t, 1020.0, a.Kollsman())
	assert.Equal(t, 1020.0, a.Reading().Reference)

	s, err := wheel.New(p, wheel.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1013, s.Selected())
}

func TestSeedPressure(t *testing.T) {
	a, _ := newAltimeter(t, baro.Feet, baro.Millibars)
	a.SeedPressure(1002.4)
	assert.Equal(t, 1002.4, a.Pressure())
	assert.False(t, a.Filter().Operative())
	assert.Equal(t, 1002, a.WheelParams().Barom)

	a.SeedPressure(0)
	assert.Equal(t, 1002.4, a.Pressure())
}

func TestRender_Raster(t *testing.T) {
	face, err := raster.NewFace(18)
	require.NoError(t, err)
	defer face.Close()

	a, err := New(Options{Font: face})
	require.NoError(t, err)
	a.Layout(320, 160)
	a.SetPressure(900, 1)

	c := raster.New(320, 160)
	a.Render(c, time.Now())

	img := c.Image()
	var painted int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted++
		}
	}
	assert.Greater(t, painted, 100)
}
