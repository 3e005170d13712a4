package vario

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// lowPass is a biquad low-pass that takes the edge off the gain ramps.
type lowPass struct {
	streamer beep.Streamer

	b0, b1, b2 float64 // normalized by a0
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

func newLowPass(s beep.Streamer, sampleRate, cutoff, q float64) *lowPass {
	omega := 2 * math.Pi * cutoff / sampleRate
	cs := math.Cos(omega)
	alpha := math.Sin(omega) / (2 * q)
	a0 := 1 + alpha

	return &lowPass{
		streamer: s,
		b0:       (1 - cs) / 2 / a0,
		b1:       (1 - cs) / a0,
		b2:       (1 - cs) / 2 / a0,
		a1:       -2 * cs / a0,
		a2:       (1 - alpha) / a0,
	}
}

func (f *lowPass) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch], f.x1[ch] = f.x1[ch], x
			f.y2[ch], f.y1[ch] = f.y1[ch], y
			samples[i][ch] = y
		}
	}
	return n, ok
}

func (f *lowPass) Err() error {
	return f.streamer.Err()
}
