package vario

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is used for rendered audio.
const DefaultSampleRate = beep.SampleRate(22050)

// Point is a vertical speed at a time offset into a recording.
type Point struct {
	Time time.Duration
	VSI  float64
}

// Track voices a recorded vertical speed trace. Each point holds until the
// next one; the last point only marks the end.
func Track(points []Point, sr beep.SampleRate) beep.Streamer {
	tone := NewTone(sr)

	var segs []beep.Streamer
	for i := 0; i+1 < len(points); i++ {
		n := sr.N(points[i+1].Time - points[i].Time)
		if n <= 0 {
			continue
		}
		vsi := points[i].VSI
		segs = append(segs,
			beep.Callback(func() { tone.SetVSI(vsi) }),
			beep.Take(n, tone),
		)
	}
	return newLowPass(beep.Seq(segs...), float64(sr), 4000, 0.707)
}

// WriteWAV encodes s as 16-bit mono WAV.
func WriteWAV(w io.WriteSeeker, s beep.Streamer, sr beep.SampleRate) error {
	format := beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}

// SaveWAV writes s to path.
func SaveWAV(path string, s beep.Streamer, sr beep.SampleRate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteWAV(f, s, sr); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
