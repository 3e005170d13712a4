package baro

import "math"

// Presentation conversions. Nothing in this package applies them itself.
const (
	MetersToFeet    = 3.2808399
	MillibarsToInHg = 29.92 / 1013
)

// AltitudeUnit selects how altitudes are shown.
type AltitudeUnit string

// PressureUnit selects how the Kollsman setting is shown.
type PressureUnit string

const (
	Feet   AltitudeUnit = "feet"
	Meters AltitudeUnit = "meters"

	InHg      PressureUnit = "inhg"
	Millibars PressureUnit = "mb"
)

// Factor returns the multiplier from meters to the unit.
func (u AltitudeUnit) Factor() float64 {
	if u == Meters {
		return 1
	}
	return MetersToFeet
}

// Valid reports whether u is a known altitude unit.
func (u AltitudeUnit) Valid() bool {
	return u == Feet || u == Meters
}

// Valid reports whether u is a known pressure unit.
func (u PressureUnit) Valid() bool {
	return u == InHg || u == Millibars
}

// ValidPressure reports whether mb is finite and positive.
func ValidPressure(mb float64) bool {
	return !math.IsNaN(mb) && !math.IsInf(mb, 0) && mb > 0
}
