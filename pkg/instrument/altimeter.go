// Package instrument composes the altimeter face: the scrolling altitude
// gauge, the Kollsman window and the INOP flag. Meters and millibars are
// converted to display units here and nowhere else.
package instrument

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"

	"altimeter/pkg/baro"
	"altimeter/pkg/draw"
	"altimeter/pkg/gauge"
	"altimeter/pkg/wheel"
)

// Placement of the gauge and Kollsman window as fractions of the face.
const (
	KollsmanX = 0.91 // right edge
	KollsmanY = 0.5  // center
	GaugeX    = 0.09 // left edge
	GaugeY    = 0.5  // center

	MaxAltitude = 50000
)

// ErrInvalidUnits is returned for unknown unit names.
var ErrInvalidUnits = errors.New("invalid units")

// Options configure an Altimeter.
type Options struct {
	AltitudeUnits baro.AltitudeUnit
	PressureUnits baro.PressureUnit
	Font          draw.Font
	Padding       float64
	Filter        []baro.FilterOption
}

// Altimeter is the instrument face.
type Altimeter struct {
	filter *baro.Filter
	gauge  *gauge.Gauge
	font   draw.Font
	pad    float64

	altUnits  baro.AltitudeUnit
	presUnits baro.PressureUnit
	pressure  float64 // last sample, mB
	kollsman  float64 // mB

	w, h           int
	gx, gy         int
	kx, ky, kw, kh float64
}

// New builds an altimeter with a standard Kollsman setting.
func New(opts Options) (*Altimeter, error) {
	if opts.AltitudeUnits == "" {
		opts.AltitudeUnits = baro.Feet
	}
	if opts.PressureUnits == "" {
		opts.PressureUnits = baro.InHg
	}
	if !opts.AltitudeUnits.Valid() {
		return nil, fmt.Errorf("%w: altitude %q", ErrInvalidUnits, opts.AltitudeUnits)
	}
	if !opts.PressureUnits.Valid() {
		return nil, fmt.Errorf("%w: pressure %q", ErrInvalidUnits, opts.PressureUnits)
	}
	if opts.Font == nil {
		opts.Font = draw.DefaultMonoFont
	}
	if opts.Padding <= 0 {
		opts.Padding = gauge.DefaultPadding
	}

	a := &Altimeter{
		filter:    baro.NewFilter(opts.Filter...),
		font:      opts.Font,
		pad:       opts.Padding,
		altUnits:  opts.AltitudeUnits,
		presUnits: opts.PressureUnits,
		pressure:  baro.StandardPressure,
		kollsman:  baro.StandardPressure,
	}
	a.filter.SetReference(a.kollsman)

	g, err := a.newGauge(a.altUnits)
	if err != nil {
		return nil, err
	}
	a.gauge = g
	return a, nil
}

func (a *Altimeter) newGauge(u baro.AltitudeUnit) (*gauge.Gauge, error) {
	step := 10
	if u == baro.Meters {
		step = 5
	}
	g, err := gauge.New(gauge.Options{
		MaxValue:      MaxAltitude,
		Step:          step,
		AllowNegative: true,
		Font:          a.font,
		Padding:       a.pad,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build altitude gauge: %w", err)
	}
	g.SetPosition(a.gx, a.gy)
	return g, nil
}

// SetAltitudeUnits switches feet/meters, rebuilding the gauge so the
// trailing digits match the new step.
func (a *Altimeter) SetAltitudeUnits(u baro.AltitudeUnit) error {
	if !u.Valid() {
		return fmt.Errorf("%w: altitude %q", ErrInvalidUnits, u)
	}
	if u == a.altUnits {
		return nil
	}
	g, err := a.newGauge(u)
	if err != nil {
		return err
	}
	a.altUnits = u
	a.gauge = g
	return nil
}

// SetPressureUnits switches the Kollsman window between inHg and mB.
func (a *Altimeter) SetPressureUnits(u baro.PressureUnit) error {
	if !u.Valid() {
		return fmt.Errorf("%w: pressure %q", ErrInvalidUnits, u)
	}
	a.presUnits = u
	return nil
}

func (a *Altimeter) AltitudeUnits() baro.AltitudeUnit { return a.altUnits }
func (a *Altimeter) PressureUnits() baro.PressureUnit { return a.presUnits }

// Gauge exposes the altitude gauge.
func (a *Altimeter) Gauge() *gauge.Gauge { return a.gauge }

// Filter exposes the altitude filter.
func (a *Altimeter) Filter() *baro.Filter { return a.filter }

// SetPressure applies a sensor sample and returns the filtered altitude in
// meters.
func (a *Altimeter) SetPressure(mb float64, timestampNanos int64) float64 {
	a.pressure = mb
	return a.filter.Update(mb, timestampNanos)
}

// SeedPressure sets the station pressure used by WheelParams before any
// sample has arrived. The filter is not touched.
func (a *Altimeter) SeedPressure(mb float64) {
	if mb > 0 {
		a.pressure = mb
	}
}

// Pressure returns the last sampled pressure in mB.
func (a *Altimeter) Pressure() float64 { return a.pressure }

// SetKollsman sets the reference pressure in mB.
func (a *Altimeter) SetKollsman(mb float64) {
	a.kollsman = mb
	a.filter.SetReference(mb)
}

// Kollsman returns the reference pressure in mB.
func (a *Altimeter) Kollsman() float64 { return a.kollsman }

// Reading returns the filter snapshot.
func (a *Altimeter) Reading() baro.Reading { return a.filter.Reading() }

// DisplayAltitude is the filtered altitude in the display unit.
func (a *Altimeter) DisplayAltitude() float64 {
	return a.filter.Altitude() * a.altUnits.Factor()
}

// Inoperative reports whether the INOP flag should show: no sample yet,
// or the last one is stale.
func (a *Altimeter) Inoperative(now time.Time) bool {
	return !a.filter.Operative() || !a.filter.IsRecent(now)
}

// KollsmanLabel formats the reference pressure for the window.
func (a *Altimeter) KollsmanLabel() string {
	if a.presUnits == baro.Millibars {
		return strconv.Itoa(int(a.kollsman))
	}
	return fmt.Sprintf("%05.2f", a.kollsman*baro.MillibarsToInHg)
}

// WheelParams describes a setting wheel for the current state. In inHg
// the wheel works in hundredths.
func (a *Altimeter) WheelParams() wheel.Params {
	k, p := a.kollsman, a.pressure
	if a.presUnits == baro.InHg {
		k *= baro.MillibarsToInHg * 100
		p *= baro.MillibarsToInHg * 100
	}
	barom := int(p + .5)
	lo, hi := wheel.DefaultBounds(barom)
	return wheel.Params{
		Initial:       int(k + .5),
		Min:           lo,
		Max:           hi,
		Barom:         barom,
		AltitudeScale: a.altUnits.Factor(),
	}
}

// ApplyWheel sets the Kollsman from a wheel value in WheelParams units.
// Zero is ignored.
func (a *Altimeter) ApplyWheel(v int) {
	if v == 0 {
		return
	}
	mb := float64(v)
	if a.presUnits == baro.InHg {
		mb *= .01 / baro.MillibarsToInHg
	}
	a.SetKollsman(mb)
}

// Layout sizes the face to w by h.
func (a *Altimeter) Layout(w, h int) {
	a.w, a.h = w, h

	a.kw = math.Trunc(a.font.MeasureText("29.92")) + a.pad*2
	a.kh = math.Trunc(a.font.Ascent()) + a.pad*2
	a.kx = float64(w) * KollsmanX
	a.ky = float64(h) * KollsmanY

	a.gx = int(float64(w) * GaugeX)
	a.gy = int(float64(h) * GaugeY)
	a.gauge.SetPosition(a.gx, a.gy)
}

// Size returns the laid out size.
func (a *Altimeter) Size() (w, h int) { return a.w, a.h }

// KollsmanRect is the Kollsman window.
func (a *Altimeter) KollsmanRect() draw.Rect {
	return draw.R(a.kx-a.kw, a.ky-a.kh/2, a.kx, a.ky+a.kh/2)
}

// Render draws the face as of now.
func (a *Altimeter) Render(s draw.Surface, now time.Time) {
	a.gauge.SetValue(a.DisplayAltitude())
	a.gauge.Render(s)
	a.drawKollsman(s)
	if a.Inoperative(now) {
		a.drawInop(s)
	}
}

func (a *Altimeter) drawKollsman(s draw.Surface) {
	rk := a.KollsmanRect()
	s.FillRect(rk, draw.Black)
	s.StrokeRect(rk, draw.White)
	a.placeText(s, a.KollsmanLabel(), a.kx-a.pad, a.ky, alignRight, draw.White)
}

func (a *Altimeter) drawInop(s draw.Surface) {
	xc, yc := float64(a.w/2), float64(a.h/2)
	w := a.font.MeasureText("INOP") + a.pad*2
	h := a.font.Ascent() + a.pad*2
	r := draw.R(xc-w/2, yc-h/2, xc+w/2, yc+h/2)

	s.FillRect(r, draw.Black)
	s.StrokeRect(r, draw.White)
	a.placeText(s, "INOP", xc, yc, alignCenter, draw.Red)
}

type align int

const (
	alignCenter align = iota
	alignRight
)

// placeText draws str vertically centered on y, with x as its right edge
// or horizontal center.
func (a *Altimeter) placeText(s draw.Surface, str string, x, y float64, al align, c color.Color) {
	b := a.font.TextBounds(str)
	switch al {
	case alignRight:
		x -= b.Right
	case alignCenter:
		x -= (b.Left + b.Right) / 2
	}
	y -= (b.Bottom + b.Top) / 2
	s.Text(str, x, y, a.font, c)
}
