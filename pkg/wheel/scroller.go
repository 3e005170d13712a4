// Package wheel implements the Kollsman setting wheel: a vertical list of
// reference pressures the user drags, flings and lets settle on a whole
// value. Animation is driven by explicit Tick calls so the state machine
// runs without a real clock.
package wheel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"altimeter/pkg/baro"
)

// State is the motion state of the wheel.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
	StateFlinging State = "flinging"
	StateSettling State = "settling"
)

const (
	// FloorAltitude is the lowest altitude the wheel admits, in meters.
	// Bar Yehuda airfield by the Dead Sea sits at -378 m.
	FloorAltitude = -380.0

	// MinFlingVelocity is the release speed below which no fling starts,
	// in pixels per second.
	MinFlingVelocity = 50.0

	// RubberBand is how far, in values, the wheel can be dragged past a
	// bound before it stops moving.
	RubberBand = 7.0

	// FlingOvershoot aborts a fling once it is this far past a bound.
	FlingOvershoot = 6.0

	DefaultRowSpacing     = 21.0
	DefaultFlingDuration  = time.Second
	DefaultSettleDuration = 250 * time.Millisecond

	// FrameInterval is the tick period hosts should use while animating.
	FrameInterval = 20 * time.Millisecond
)

// ErrInvalidBounds is returned when the wheel range is empty.
var ErrInvalidBounds = errors.New("invalid wheel bounds")

// Params describe the values on the wheel. Pressures are integers in the
// display unit (millibars, or hundredths of inHg).
type Params struct {
	Initial int
	Min     int
	Max     int
	// Barom is the current station pressure, same unit as the rest.
	Barom int
	// AltitudeScale converts meters to the altitude display unit.
	AltitudeScale float64
}

// Options tune the wheel's feel.
type Options struct {
	FlingEnabled   bool
	RowSpacing     float64
	FlingDuration  time.Duration
	SettleDuration time.Duration
}

// DefaultOptions returns the stock wheel behavior.
func DefaultOptions() Options {
	return Options{
		FlingEnabled:   true,
		RowSpacing:     DefaultRowSpacing,
		FlingDuration:  DefaultFlingDuration,
		SettleDuration: DefaultSettleDuration,
	}
}

// DefaultBounds guesses a wheel range from the current pressure. Values
// above 2000 are taken to be hundredths of inHg.
func DefaultBounds(barom int) (lower, upper int) {
	if barom > 2000 {
		return 2700, 3300
	}
	return 900, 1150
}

// Status is a snapshot of the wheel.
type Status struct {
	State    State   `json:"state"`
	Selected int     `json:"selected"`
	Value    float64 `json:"value"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// Scroller is the wheel state machine. It is not safe for concurrent use;
// pointer events and ticks must come from one goroutine.
type Scroller struct {
	opts  Options
	min   int
	max   int
	barom int
	scale float64

	selected int
	value    float64 // may stray past the bounds while moving
	state    State

	lastY    float64
	tracker  *VelocityTracker
	elapsed  time.Duration
	velocity float64 // pixels per second
	initial  float64
	target   int
}

// New builds a wheel. The lower bound and the initial value are raised to
// the pressure that puts the station at FloorAltitude.
func New(p Params, opts Options) (*Scroller, error) {
	if p.Barom <= 0 {
		return nil, fmt.Errorf("%w: station pressure must be positive, got %d", ErrInvalidBounds, p.Barom)
	}
	if opts.RowSpacing <= 0 {
		opts.RowSpacing = DefaultRowSpacing
	}
	if opts.FlingDuration <= 0 {
		opts.FlingDuration = DefaultFlingDuration
	}
	if opts.SettleDuration <= 0 {
		opts.SettleDuration = DefaultSettleDuration
	}

	floor := int(baro.PressureToSeaLevel(float64(p.Barom), FloorAltitude))
	lower := max(p.Min, floor)
	if lower >= p.Max {
		return nil, fmt.Errorf("%w: [%d, %d] (floor %d)", ErrInvalidBounds, lower, p.Max, floor)
	}

	scale := p.AltitudeScale
	if scale <= 0 {
		scale = 1
	}

	initial := min(max(p.Initial, lower), p.Max)
	return &Scroller{
		opts:     opts,
		min:      lower,
		max:      p.Max,
		barom:    p.Barom,
		scale:    scale,
		selected: initial,
		value:    float64(initial),
		state:    StateIdle,
		tracker:  NewVelocityTracker(velocityWindow),
	}, nil
}

// Selected returns the chosen value. It is always within bounds.
func (s *Scroller) Selected() int { return s.selected }

// Value returns the displayed, possibly fractional, position.
func (s *Scroller) Value() float64 { return s.value }

// State returns the motion state.
func (s *Scroller) State() State { return s.state }

// Bounds returns the effective range.
func (s *Scroller) Bounds() (lower, upper int) { return s.min, s.max }

// Animating reports whether Tick has work to do.
func (s *Scroller) Animating() bool {
	return s.state == StateFlinging || s.state == StateSettling
}

// SetFlingEnabled toggles kinetic scrolling.
func (s *Scroller) SetFlingEnabled(on bool) { s.opts.FlingEnabled = on }

// FlingEnabled reports whether releases may fling.
func (s *Scroller) FlingEnabled() bool { return s.opts.FlingEnabled }

// Status returns a snapshot.
func (s *Scroller) Status() Status {
	return Status{State: s.state, Selected: s.selected, Value: s.value, Min: s.min, Max: s.max}
}

// AltitudeAt is the station altitude, in display units, if the reference
// pressure were p.
func (s *Scroller) AltitudeAt(p int) int {
	return int(math.Round(baro.PressureToAltitude(float64(p), float64(s.barom)) * s.scale))
}

// Stop ends a drag, fling or settle and leaves the wheel where it is.
// The selected value is not changed.
func (s *Scroller) Stop() {
	s.state = StateIdle
	s.tracker.Reset()
}

// Down starts a gesture. Any animation in flight stops immediately.
func (s *Scroller) Down(x, y float64, tMillis int64) bool {
	s.Stop()
	s.state = StateDragging
	s.lastY = y
	s.tracker.Reset()
	s.tracker.Add(millis(tMillis), y)
	return true
}

// Move drags the wheel. Moving the pointer up raises the value.
func (s *Scroller) Move(x, y float64, tMillis int64) bool {
	if s.state != StateDragging {
		return false
	}
	s.drag(y, tMillis)
	return true
}

// Up ends a gesture with a fling or a settle onto the nearest value.
func (s *Scroller) Up(x, y float64, tMillis int64) bool {
	if s.state != StateDragging {
		return false
	}
	s.drag(y, tMillis)

	vy := s.tracker.Velocity()
	if s.opts.FlingEnabled && math.Abs(vy) >= MinFlingVelocity {
		s.startFling(vy)
		return true
	}
	s.scrollDone()
	return true
}

// Tick advances a fling or settle by elapsed and reports whether more
// ticks are needed.
func (s *Scroller) Tick(elapsed time.Duration) bool {
	if elapsed < 0 {
		elapsed = 0
	}
	dt := elapsed.Seconds()

	switch s.state {
	case StateFlinging:
		if s.value < float64(s.min)-FlingOvershoot || s.value > float64(s.max)+FlingOvershoot {
			s.scrollDone()
			return true
		}
		s.elapsed += elapsed
		s.scroll(-s.velocity * dt)
		s.velocity -= s.initial * dt / s.opts.FlingDuration.Seconds()
		if s.elapsed > s.opts.FlingDuration {
			s.scrollDone()
		}
		return true

	case StateSettling:
		s.elapsed += elapsed
		if s.elapsed > s.opts.SettleDuration {
			s.value = float64(s.target)
			s.selected = s.target
			s.state = StateIdle
			return false
		}
		s.scroll(-s.velocity * dt)
		return true
	}
	return false
}

func (s *Scroller) drag(y float64, tMillis int64) {
	dy := s.lastY - y
	s.lastY = y
	s.tracker.Add(millis(tMillis), y)
	if dy != 0 {
		s.scroll(dy)
	}
}

// scroll moves the wheel by dy pixels, resisting motion further past a
// bound.
func (s *Scroller) scroll(dy float64) {
	lo, hi := float64(s.min), float64(s.max)
	switch {
	case s.value < lo && dy < 0:
		dy *= resistance(lo - s.value)
	case s.value > hi && dy > 0:
		dy *= resistance(s.value - hi)
	}
	s.value += dy / s.opts.RowSpacing
}

func resistance(overshoot float64) float64 {
	return math.Max(0, (RubberBand-overshoot)/RubberBand)
}

func (s *Scroller) startFling(vy float64) {
	s.state = StateFlinging
	s.elapsed = 0
	s.velocity = vy
	s.initial = vy
}

// scrollDone picks the nearest in-bounds value and settles onto it.
func (s *Scroller) scrollDone() {
	target := int(math.Floor(s.value + 0.5))
	target = min(max(target, s.min), s.max)
	s.selected = target
	s.startSettle(target)
}

func (s *Scroller) startSettle(target int) {
	s.state = StateSettling
	s.elapsed = 0
	s.target = target
	s.velocity = s.opts.RowSpacing * (s.value - float64(target)) / s.opts.SettleDuration.Seconds()
	s.initial = s.velocity
}

func millis(t int64) time.Duration {
	return time.Duration(t) * time.Millisecond
}
