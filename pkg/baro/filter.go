package baro

import "time"

const (
	// Damping is the weight given to the previous altitude estimate.
	Damping = 0.85
	// VSIDamping is the weight given to the previous vertical speed.
	VSIDamping = 0.95
	// StaleAfter is how long a wall-clock snapshot counts as recent.
	StaleAfter = 10 * time.Second
)

// Reading is a snapshot of the filter state.
type Reading struct {
	Altitude   float64   `json:"altitude_m"`
	VSI        float64   `json:"vsi"`
	Pressure   float64   `json:"pressure_mb"`
	Reference  float64   `json:"kollsman_mb"`
	SampleTime int64     `json:"sample_time_ns"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Operative reports whether the reading came from at least one sample.
func (r Reading) Operative() bool {
	return r.SampleTime != 0
}

// Filter turns timestamped pressure samples into a damped altitude and
// vertical speed.
//
// Filter is not safe for concurrent use. Callers delivering sensor samples
// and render passes on different goroutines must serialize them.
type Filter struct {
	model *Model
	clock func() time.Time

	altitude      float64
	vsi           float64
	lastSample    int64 // monotonic ns, 0 until the first sample
	lastWallClock time.Time
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithClock replaces the wall clock used for staleness checks.
func WithClock(clock func() time.Time) FilterOption {
	return func(f *Filter) {
		f.clock = clock
	}
}

// WithModel uses an existing pressure model.
func WithModel(m *Model) FilterOption {
	return func(f *Filter) {
		f.model = m
	}
}

// NewFilter creates an inoperative filter.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{
		model: NewModel(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Model exposes the underlying pressure model.
func (f *Filter) Model() *Model {
	return f.model
}

// SetReference changes the Kollsman setting. The filter state is left alone;
// the next sample blends toward the new altitude.
func (f *Filter) SetReference(mb float64) {
	f.model.SetReference(mb)
}

// Update applies a pressure sample and returns the damped altitude.
//
// The first sample seeds the estimate directly. Vertical speed is only
// updated when the timestamp moves forward.
func (f *Filter) Update(mb float64, timestampNanos int64) float64 {
	raw := f.model.PressureToAltitude(mb)
	if f.lastSample != 0 {
		prev := f.altitude
		f.altitude = raw*(1-Damping) + prev*Damping
		if timestampNanos > f.lastSample {
			dt := float64(timestampNanos-f.lastSample) * 1e-9
			rate := (f.altitude - prev) / dt
			f.vsi = rate*(1-VSIDamping) + f.vsi*VSIDamping
		}
	} else {
		f.altitude = raw
	}
	f.lastSample = timestampNanos
	f.lastWallClock = f.clock()
	return f.altitude
}

// IsRecent reports whether the last sample arrived within StaleAfter of now.
func (f *Filter) IsRecent(now time.Time) bool {
	return now.Sub(f.lastWallClock) < StaleAfter
}

// Operative reports whether any sample has been applied.
func (f *Filter) Operative() bool {
	return f.lastSample != 0
}

// Altitude returns the damped altitude in meters.
func (f *Filter) Altitude() float64 {
	return f.altitude
}

// VSI returns the damped vertical speed in meters per second.
func (f *Filter) VSI() float64 {
	return f.vsi
}

// LastSampleTime returns the monotonic timestamp of the last sample.
func (f *Filter) LastSampleTime() int64 {
	return f.lastSample
}

// Reading returns a snapshot of the current state.
func (f *Filter) Reading() Reading {
	return Reading{
		Altitude:   f.altitude,
		VSI:        f.vsi,
		Pressure:   f.model.LastPressure(),
		Reference:  f.model.Reference(),
		SampleTime: f.lastSample,
		UpdatedAt:  f.lastWallClock,
	}
}
