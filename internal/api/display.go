package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"altimeter/pkg/baro"
	"altimeter/pkg/config"
	"altimeter/pkg/draw"
	"altimeter/pkg/draw/raster"
	"altimeter/pkg/instrument"
	"altimeter/pkg/logging"
	"altimeter/pkg/sensor"
	"altimeter/pkg/store"
	"altimeter/pkg/wheel"
)

// recordBatch is how many samples are buffered before they are written.
const recordBatch = 50

// Reading is the JSON view of the instrument.
type Reading struct {
	baro.Reading
	DisplayAltitude float64 `json:"display_altitude"`
	AltitudeUnits   string  `json:"altitude_units"`
	PressureUnits   string  `json:"pressure_units"`
	KollsmanLabel   string  `json:"kollsman_label"`
	Inop            bool    `json:"inop"`
}

// Display owns the altimeter. Sensor samples, settings changes and render
// passes arrive on different goroutines and are serialized here.
type Display struct {
	mu       sync.Mutex
	alt      *instrument.Altimeter
	settings config.Provider
	metrics  *Metrics
	font     draw.Font
	clock    func() time.Time

	inop bool

	recorder store.SampleStore
	session  string
	pending  []sensor.Sample
}

// DisplayOption configures a Display.
type DisplayOption func(*Display)

// WithDisplayClock overrides the wall clock.
func WithDisplayClock(clock func() time.Time) DisplayOption {
	return func(d *Display) { d.clock = clock }
}

// WithRecorder stores every applied sample under a fresh session.
func WithRecorder(s store.SampleStore) DisplayOption {
	return func(d *Display) {
		d.recorder = s
		d.session = "live:" + uuid.NewString()[:8]
	}
}

// WithFont sets the font used for wheel images.
func WithFont(f draw.Font) DisplayOption {
	return func(d *Display) { d.font = f }
}

// NewDisplay wraps alt. Persisted settings are applied immediately.
func NewDisplay(ctx context.Context, alt *instrument.Altimeter, settings config.Provider, m *Metrics, opts ...DisplayOption) (*Display, error) {
	d := &Display{
		alt:      alt,
		settings: settings,
		metrics:  m,
		font:     draw.DefaultMonoFont,
		clock:    time.Now,
		inop:     true,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := alt.SetAltitudeUnits(settings.AltitudeUnits(ctx)); err != nil {
		return nil, err
	}
	if err := alt.SetPressureUnits(settings.PressureUnits(ctx)); err != nil {
		return nil, err
	}
	alt.SetKollsman(settings.Kollsman(ctx))
	m.Kollsman.Set(alt.Kollsman())
	m.Inop.Set(1)
	return d, nil
}

// Session is the recording session name, empty when not recording.
func (d *Display) Session() string { return d.session }

// Apply feeds one sensor sample to the instrument.
func (d *Display) Apply(ctx context.Context, s sensor.Sample) {
	d.mu.Lock()
	f := d.alt.Filter()
	stale := f.Operative() && s.Timestamp <= f.LastSampleTime()
	altitude := d.alt.SetPressure(s.Pressure, s.Timestamp)
	vsi := f.VSI()
	d.checkInopLocked()

	var batch []sensor.Sample
	if d.recorder != nil {
		d.pending = append(d.pending, s)
		if len(d.pending) >= recordBatch {
			batch, d.pending = d.pending, nil
		}
	}
	d.mu.Unlock()

	d.metrics.Samples.Inc()
	if stale {
		d.metrics.StaleSamples.Inc()
	}
	d.metrics.Altitude.Set(altitude)
	d.metrics.VSI.Set(vsi)
	d.metrics.Pressure.Set(s.Pressure)
	logging.TraceDefault("Sample applied", "mb", s.Pressure, "alt", altitude, "vsi", vsi)

	if batch != nil {
		d.record(ctx, batch)
	}
}

// Run applies samples from src until it ends or ctx is done.
func (d *Display) Run(ctx context.Context, src sensor.Source) error {
	for {
		s, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("Sensor source ended")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.metrics.SensorErrors.Inc()
			return fmt.Errorf("sensor failed: %w", err)
		}
		d.Apply(ctx, s)
	}
}

// Reading returns the current instrument state.
func (d *Display) Reading() Reading {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checkInopLocked()
	return d.readingLocked()
}

func (d *Display) readingLocked() Reading {
	return Reading{
		Reading:         d.alt.Reading(),
		DisplayAltitude: d.alt.DisplayAltitude(),
		AltitudeUnits:   string(d.alt.AltitudeUnits()),
		PressureUnits:   string(d.alt.PressureUnits()),
		KollsmanLabel:   d.alt.KollsmanLabel(),
		Inop:            d.inop,
	}
}

// checkInopLocked logs the flag coming and going.
func (d *Display) checkInopLocked() {
	now := d.clock()
	inop := d.alt.Inoperative(now)
	if inop == d.inop {
		return
	}
	d.inop = inop
	if inop {
		d.metrics.Inop.Set(1)
		slog.Warn("Altimeter inoperative", "last_sample", d.alt.Reading().UpdatedAt)
		logging.LogEvent(logging.InopEvent(now, true))
		return
	}
	d.metrics.Inop.Set(0)
	slog.Info("Altimeter operative")
	logging.LogEvent(logging.InopEvent(now, false))
}

// SetKollsman changes the reference pressure and persists it.
func (d *Display) SetKollsman(ctx context.Context, mb float64) error {
	if !baro.ValidPressure(mb) {
		return fmt.Errorf("invalid Kollsman setting %.2f", mb)
	}
	d.mu.Lock()
	old := d.alt.KollsmanLabel()
	d.alt.SetKollsman(mb)
	label := d.alt.KollsmanLabel()
	d.mu.Unlock()

	return d.kollsmanChanged(ctx, mb, old, label)
}

// ApplyWheel sets the Kollsman from a wheel value.
func (d *Display) ApplyWheel(ctx context.Context, v int) error {
	if v == 0 {
		return nil
	}
	d.mu.Lock()
	old := d.alt.KollsmanLabel()
	d.alt.ApplyWheel(v)
	mb := d.alt.Kollsman()
	label := d.alt.KollsmanLabel()
	d.mu.Unlock()

	return d.kollsmanChanged(ctx, mb, old, label)
}

func (d *Display) kollsmanChanged(ctx context.Context, mb float64, old, label string) error {
	d.metrics.Kollsman.Set(mb)
	slog.Info("Kollsman set", "mb", mb, "label", label)
	logging.LogEvent(logging.KollsmanEvent(d.clock(), label, old))
	if err := d.settings.SetKollsman(ctx, mb); err != nil && !errors.Is(err, config.ErrNoStore) {
		return fmt.Errorf("failed to persist Kollsman: %w", err)
	}
	return nil
}

// SetUnits switches the display units. Empty values are left alone.
func (d *Display) SetUnits(ctx context.Context, alt baro.AltitudeUnit, pres baro.PressureUnit) error {
	d.mu.Lock()
	if alt != "" {
		if err := d.alt.SetAltitudeUnits(alt); err != nil {
			d.mu.Unlock()
			return err
		}
	}
	if pres != "" {
		if err := d.alt.SetPressureUnits(pres); err != nil {
			d.mu.Unlock()
			return err
		}
	}
	alt, pres = d.alt.AltitudeUnits(), d.alt.PressureUnits()
	d.mu.Unlock()

	for _, err := range []error{d.settings.SetAltitudeUnits(ctx, alt), d.settings.SetPressureUnits(ctx, pres)} {
		if err != nil && !errors.Is(err, config.ErrNoStore) {
			return fmt.Errorf("failed to persist units: %w", err)
		}
	}
	return nil
}

// NewWheel builds a setting wheel for the current Kollsman and pressure.
func (d *Display) NewWheel(ctx context.Context) (*wheel.Scroller, error) {
	cfg := d.settings.AppConfig().Wheel
	opts := wheel.Options{
		FlingEnabled:   d.settings.FlingEnabled(ctx),
		RowSpacing:     cfg.RowSpacing,
		FlingDuration:  time.Duration(cfg.FlingDuration),
		SettleDuration: time.Duration(cfg.SettleDuration),
	}
	d.mu.Lock()
	p := d.alt.WheelParams()
	d.mu.Unlock()
	return wheel.New(p, opts)
}

// RenderInstrument writes the face as PNG.
func (d *Display) RenderInstrument(w io.Writer, width, height int) error {
	timer := prometheus.NewTimer(d.metrics.RenderDuration.WithLabelValues("instrument"))
	c := raster.New(width, height)
	c.FillRect(draw.R(0, 0, float64(width), float64(height)), draw.Black)

	d.mu.Lock()
	if lw, lh := d.alt.Size(); lw != width || lh != height {
		d.alt.Layout(width, height)
	}
	d.alt.Render(c, d.clock())
	d.mu.Unlock()

	timer.ObserveDuration()
	return raster.EncodePNG(w, c.Image())
}

// RenderWheel writes a wheel at rest on the current setting as PNG.
func (d *Display) RenderWheel(ctx context.Context, w io.Writer, width, height int) error {
	s, err := d.NewWheel(ctx)
	if err != nil {
		return err
	}
	return d.renderScroller(w, s, width, height)
}

func (d *Display) renderScroller(w io.Writer, s *wheel.Scroller, width, height int) error {
	timer := prometheus.NewTimer(d.metrics.RenderDuration.WithLabelValues("wheel"))
	c := raster.New(width, height)
	s.Render(c, width, height, d.font)
	timer.ObserveDuration()
	return raster.EncodePNG(w, c.Image())
}

// Flush writes buffered samples and remembers the last pressure.
func (d *Display) Flush(ctx context.Context) error {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	mb := d.alt.Pressure()
	operative := d.alt.Filter().Operative()
	d.mu.Unlock()

	if batch != nil {
		d.record(ctx, batch)
	}
	if !operative {
		return nil
	}
	if err := d.settings.SetLastPressure(ctx, mb); err != nil && !errors.Is(err, config.ErrNoStore) {
		return fmt.Errorf("failed to persist last pressure: %w", err)
	}
	return nil
}

func (d *Display) record(ctx context.Context, batch []sensor.Sample) {
	if err := d.recorder.AppendSamples(ctx, d.session, batch); err != nil {
		slog.Error("Failed to record samples", "session", d.session, "count", len(batch), "error", err)
	}
}
