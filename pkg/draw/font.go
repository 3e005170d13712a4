package draw

import "unicode/utf8"

// MonoFont is a fixed-pitch font described only by its metrics. Every glyph
// has the same advance and the same ink box, so layouts built on it are
// exact.
type MonoFont struct {
	Advance float64 // per-glyph advance
	Cap     float64 // ink height above the baseline
	Descent float64 // ink depth below the baseline
	Leading float64 // extra line spacing
}

// DefaultMonoFont approximates an 18px monospace face.
var DefaultMonoFont = MonoFont{Advance: 11, Cap: 13, Descent: 0, Leading: 8}

func (f MonoFont) MeasureText(s string) float64 {
	return f.Advance * float64(utf8.RuneCountInString(s))
}

func (f MonoFont) TextBounds(s string) Rect {
	return Rect{Left: 0, Top: -f.Cap, Right: f.MeasureText(s), Bottom: f.Descent}
}

func (f MonoFont) Ascent() float64 {
	return f.Cap
}

func (f MonoFont) Spacing() float64 {
	return f.Cap + f.Descent + f.Leading
}
