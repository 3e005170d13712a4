package wheel

import "time"

// velocityWindow is how far back pointer samples count toward a release
// velocity.
const velocityWindow = 100 * time.Millisecond

// VelocityTracker keeps a rolling window of pointer positions and reports
// the vertical velocity across it.
type VelocityTracker struct {
	samples []pointerSample
	window  time.Duration
}

type pointerSample struct {
	t time.Duration
	y float64
}

// NewVelocityTracker creates a tracker over the given window.
func NewVelocityTracker(window time.Duration) *VelocityTracker {
	return &VelocityTracker{window: window}
}

// Add records a pointer position at time t (any monotonic origin).
func (v *VelocityTracker) Add(t time.Duration, y float64) {
	v.samples = append(v.samples, pointerSample{t: t, y: y})

	cutoff := t - v.window
	for len(v.samples) > 2 && v.samples[1].t < cutoff {
		v.samples = v.samples[1:]
	}
}

// Velocity returns the vertical velocity in pixels per second, positive
// when the pointer moves down the screen.
func (v *VelocityTracker) Velocity() float64 {
	if len(v.samples) < 2 {
		return 0
	}
	first := v.samples[0]
	last := v.samples[len(v.samples)-1]

	dt := (last.t - first.t).Seconds()
	if dt <= 0 {
		return 0
	}
	return (last.y - first.y) / dt
}

// Reset clears the tracker.
func (v *VelocityTracker) Reset() {
	v.samples = v.samples[:0]
}
