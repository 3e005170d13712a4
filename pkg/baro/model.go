// Package baro converts between barometric pressure and altitude and filters
// a raw pressure stream into a damped altitude and vertical speed estimate.
//
// All pressures are in millibars and all altitudes in meters. Conversion to
// feet or inches of mercury happens at the presentation boundary only.
package baro

import "math"

// Standard atmosphere approximation:
//
//	p = p0 * (1 - Scale*h)^Exponent
//
// p0 can be in any unit; the sensor stack uses millibars, so do we.
const (
	StandardPressure = 1013.25 // mB
	Scale            = 2.25577e-5
	Exponent         = 5.25588

	// BreakdownAltitude is where 1 - Scale*h reaches zero. The model is
	// meaningless at and above it; nothing we display gets close.
	BreakdownAltitude = 1 / Scale // ~44331 m
)

// Model converts pressure to altitude relative to a reference (Kollsman)
// setting.
type Model struct {
	reference    float64
	lastPressure float64
}

// NewModel returns a model referenced to standard sea-level pressure.
func NewModel() *Model {
	return &Model{reference: StandardPressure, lastPressure: StandardPressure}
}

// SetReference sets the Kollsman setting in millibars.
func (m *Model) SetReference(mb float64) {
	m.reference = mb
}

// ResetReference restores standard pressure.
func (m *Model) ResetReference() {
	m.reference = StandardPressure
}

// Reference returns the Kollsman setting in millibars.
func (m *Model) Reference() float64 {
	return m.reference
}

// LastPressure returns the last pressure passed to PressureToAltitude.
func (m *Model) LastPressure() float64 {
	return m.lastPressure
}

// AltitudeToPressure converts meters to the pressure expected at that
// altitude under the current reference.
func (m *Model) AltitudeToPressure(meters float64) float64 {
	return m.reference * Ratio(meters)
}

// PressureToAltitude converts a pressure to meters under the current
// reference and remembers the pressure for display.
func (m *Model) PressureToAltitude(mb float64) float64 {
	m.lastPressure = mb
	return RatioToAltitude(mb / m.reference)
}

// PressureToAltitude converts local pressure to meters given an explicit
// sea-level pressure.
func PressureToAltitude(seaLevel, mb float64) float64 {
	return RatioToAltitude(mb / seaLevel)
}

// AltitudeToPressure converts meters to local pressure given an explicit
// sea-level pressure.
func AltitudeToPressure(seaLevel, meters float64) float64 {
	return seaLevel * Ratio(meters)
}

// PressureToSeaLevel converts a local pressure observed at the given
// altitude into the equivalent sea-level pressure.
func PressureToSeaLevel(mb, meters float64) float64 {
	return mb / Ratio(meters)
}

// Ratio returns pressure/reference for an altitude in meters.
func Ratio(meters float64) float64 {
	return math.Pow(1-Scale*meters, Exponent)
}

// RatioToAltitude inverts Ratio.
func RatioToAltitude(ratio float64) float64 {
	return (1 - math.Pow(ratio, 1/Exponent)) / Scale
}
