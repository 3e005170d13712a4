package baro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModel_RoundTrip(t *testing.T) {
	for _, ref := range []float64{950, StandardPressure, 1040} {
		m := NewModel()
		m.SetReference(ref)
		for meters := -400.0; meters <= 20000; meters += 250 {
			got := m.PressureToAltitude(m.AltitudeToPressure(meters))
			assert.InDelta(t, meters, got, 1e-3, "ref=%v meters=%v", ref, meters)
		}
	}
}

func TestModel_Monotonic(t *testing.T) {
	m := NewModel()

	prev := m.AltitudeToPressure(-400)
	for meters := -390.0; meters <= 20000; meters += 10 {
		p := m.AltitudeToPressure(meters)
		if p >= prev {
			t.Fatalf("AltitudeToPressure not decreasing at %vm: %v >= %v", meters, p, prev)
		}
		prev = p
	}

	prevAlt := m.PressureToAltitude(100)
	for p := 101.0; p <= 1100; p++ {
		a := m.PressureToAltitude(p)
		if a >= prevAlt {
			t.Fatalf("PressureToAltitude not decreasing at %vmB: %v >= %v", p, a, prevAlt)
		}
		prevAlt = a
	}
}

func TestModel_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		ref      float64
		pressure float64
		want     float64
		delta    float64
	}{
		{"SeaLevel", StandardPressure, StandardPressure, 0, 1e-9},
		{"ThreeThousandMeters", StandardPressure, 701.085, 3000, 5},
		{"LowPressureDay", StandardPressure, 697.2, 3043.7, 1},
		{"HighReference", 1030, 1030, 0, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel()
			m.SetReference(tt.ref)
			assert.InDelta(t, tt.want, m.PressureToAltitude(tt.pressure), tt.delta)
		})
	}
}

func TestModel_LastPressure(t *testing.T) {
	m := NewModel()
	assert.Equal(t, StandardPressure, m.LastPressure())

	m.PressureToAltitude(990)
	assert.Equal(t, 990.0, m.LastPressure())

	// The forward conversion does not touch it.
	m.AltitudeToPressure(1000)
	assert.Equal(t, 990.0, m.LastPressure())
}

func TestModel_ResetReference(t *testing.T) {
	m := NewModel()
	m.SetReference(1000)
	m.ResetReference()
	assert.Equal(t, StandardPressure, m.Reference())
}

func TestStaticConversions(t *testing.T) {
	// The static forms agree with a model carrying the same reference.
	m := NewModel()
	m.SetReference(1020)
	assert.InDelta(t, m.PressureToAltitude(900), PressureToAltitude(1020, 900), 1e-9)
	assert.InDelta(t, m.AltitudeToPressure(1234), AltitudeToPressure(1020, 1234), 1e-9)

	// Sea-level reduction inverts AltitudeToPressure.
	local := AltitudeToPressure(1008, 600)
	assert.InDelta(t, 1008, PressureToSeaLevel(local, 600), 1e-9)

	// Below sea level the reduced pressure is lower than the local one.
	assert.InDelta(t, 968.56, PressureToSeaLevel(1013, -380), 0.01)
}

func TestBreakdownAltitude(t *testing.T) {
	assert.InDelta(t, 0, 1-Scale*BreakdownAltitude, 1e-12)
	assert.Greater(t, BreakdownAltitude, 44000.0)
}

func TestAltitudeUnit(t *testing.T) {
	assert.Equal(t, 1.0, Meters.Factor())
	assert.Equal(t, MetersToFeet, Feet.Factor())
	assert.True(t, Feet.Valid())
	assert.False(t, AltitudeUnit("furlongs").Valid())
	assert.True(t, InHg.Valid())
	assert.False(t, PressureUnit("psi").Valid())
}

func TestValidPressure(t *testing.T) {
	tests := []struct {
		mb   float64
		want bool
	}{
		{StandardPressure, true},
		{0.5, true},
		{0, false},
		{-1, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPressure(tt.mb), "ValidPressure(%v)", tt.mb)
	}
}
