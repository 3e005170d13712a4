package sensor

import (
	"context"
	"io"
	"math"
	"time"

	"altimeter/pkg/baro"
)

// Segment is a stretch of constant vertical speed.
type Segment struct {
	Duration      time.Duration
	VerticalSpeed float64 // m/s, positive up
}

// Profile scripts a synthetic flight.
type Profile struct {
	SeaLevel      float64 // mB
	StartAltitude float64 // m
	Interval      time.Duration
	Segments      []Segment
	// Ripple adds a deterministic sine of this amplitude, in meters, with
	// RipplePeriod.
	Ripple       float64
	RipplePeriod time.Duration
	// Loop restarts the profile when it ends; timestamps keep increasing.
	Loop bool
}

// DefaultProfile climbs, levels off and descends back down.
func DefaultProfile() Profile {
	return Profile{
		SeaLevel:      baro.StandardPressure,
		StartAltitude: 300,
		Interval:      100 * time.Millisecond,
		Segments: []Segment{
			{Duration: 30 * time.Second},
			{Duration: 60 * time.Second, VerticalSpeed: 5},
			{Duration: 30 * time.Second},
			{Duration: 100 * time.Second, VerticalSpeed: -3},
		},
		Ripple:       0.5,
		RipplePeriod: 7 * time.Second,
	}
}

// Duration is the length of one pass through the profile.
func (p Profile) Duration() time.Duration {
	var d time.Duration
	for _, s := range p.Segments {
		d += s.Duration
	}
	return d
}

// AltitudeAt returns the scripted altitude t into the profile, without
// ripple.
func (p Profile) AltitudeAt(t time.Duration) float64 {
	alt := p.StartAltitude
	for _, s := range p.Segments {
		if t <= 0 {
			break
		}
		d := min(t, s.Duration)
		alt += s.VerticalSpeed * d.Seconds()
		t -= d
	}
	return alt
}

// Synthetic generates samples from a Profile.
type Synthetic struct {
	p     Profile
	paced bool
	n     int64
}

// NewSynthetic creates a generator. With paced set, Next blocks for the
// profile interval between samples.
func NewSynthetic(p Profile, paced bool) *Synthetic {
	if p.Interval <= 0 {
		p.Interval = 100 * time.Millisecond
	}
	if p.SeaLevel <= 0 {
		p.SeaLevel = baro.StandardPressure
	}
	return &Synthetic{p: p, paced: paced}
}

// Next returns the next sample, or io.EOF once a non-looping profile ends.
func (s *Synthetic) Next(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	elapsed := time.Duration(s.n) * s.p.Interval
	total := s.p.Duration()
	t := elapsed
	if total > 0 && t > total {
		if !s.p.Loop {
			return Sample{}, io.EOF
		}
		t %= total
	}

	if s.paced && s.n > 0 {
		if err := sleep(ctx, s.p.Interval); err != nil {
			return Sample{}, err
		}
	}
	s.n++

	alt := s.p.AltitudeAt(t)
	if s.p.Ripple != 0 && s.p.RipplePeriod > 0 {
		alt += s.p.Ripple * math.Sin(2*math.Pi*elapsed.Seconds()/s.p.RipplePeriod.Seconds())
	}
	return Sample{
		Pressure:  baro.AltitudeToPressure(s.p.SeaLevel, alt),
		Timestamp: int64(elapsed + s.p.Interval),
	}, nil
}
