// Package vario turns vertical speed into the familiar variometer audio:
// rising beeps in lift, a low continuous tone in sink, silence otherwise.
package vario

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// Thresholds in m/s.
const (
	ClimbThreshold = 0.5
	SinkThreshold  = -2.0
)

// rampTime is how long the gain takes to open or close, to avoid clicks.
const rampTime = 5 * time.Millisecond

// Voice describes the sound for one vertical speed.
type Voice struct {
	Audible   bool
	Frequency float64       // Hz
	Period    time.Duration // beep cycle, 0 for a continuous tone
}

// Pitch maps a vertical speed to a voice.
func Pitch(vsi float64) Voice {
	switch {
	case vsi >= ClimbThreshold:
		freq := math.Min(600+150*vsi, 1600)
		period := math.Max(0.15, 0.6-0.08*vsi)
		return Voice{Audible: true, Frequency: freq, Period: time.Duration(period * float64(time.Second))}
	case vsi <= SinkThreshold:
		return Voice{Audible: true, Frequency: math.Max(350+20*vsi, 200)}
	default:
		return Voice{}
	}
}

// Tone is a beep.Streamer voicing the current vertical speed. SetVSI may
// be called while another goroutine streams.
type Tone struct {
	mu sync.Mutex

	sampleRate float64
	vsi        float64
	volume     float64

	phase float64 // oscillator, cycles
	clock float64 // beep cycle, seconds
	gain  float64
	step  float64
}

// NewTone creates a silent tone at the given sample rate.
func NewTone(sr beep.SampleRate) *Tone {
	rate := float64(sr)
	return &Tone{
		sampleRate: rate,
		volume:     0.5,
		step:       1 / (rate * rampTime.Seconds()),
	}
}

// SetVSI sets the vertical speed to voice, in m/s.
func (t *Tone) SetVSI(vsi float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vsi = vsi
}

// VSI returns the vertical speed being voiced.
func (t *Tone) VSI() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vsi
}

// SetVolume sets the peak amplitude, 0..1.
func (t *Tone) SetVolume(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = math.Max(0, math.Min(1, v))
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := Pitch(t.vsi)
	period := v.Period.Seconds()
	dt := 1 / t.sampleRate

	for i := range samples {
		target := 0.0
		if v.Audible {
			target = t.volume
			if period > 0 && math.Mod(t.clock, period) >= period/2 {
				target = 0
			}
		}

		switch {
		case t.gain < target:
			t.gain = math.Min(target, t.gain+t.step)
		case t.gain > target:
			t.gain = math.Max(target, t.gain-t.step)
		}

		s := math.Sin(2*math.Pi*t.phase) * t.gain
		samples[i][0], samples[i][1] = s, s

		t.phase += v.Frequency * dt
		t.phase -= math.Floor(t.phase)
		t.clock += dt
	}
	return len(samples), true
}

func (t *Tone) Err() error {
	return nil
}
