package wheel

import (
	"strconv"

	"altimeter/pkg/draw"
)

// Layout insets, in pixels.
const (
	Margin  = 16.0
	Padding = 2.0
)

// Render draws the wheel into a w by h area: reference pressures on the
// left, the altitude each would give on the right, and a red hairline
// across the middle marking the selection.
func (s *Scroller) Render(surf draw.Surface, w, h int, f draw.Font) {
	fw, fh := float64(w), float64(h)
	sp := s.opts.RowSpacing
	tx := Margin + Padding
	ty := float64(h/2) + f.Ascent()/2

	surf.Save()
	surf.FillRect(draw.R(0, 0, fw, fh), draw.White)
	surf.ClipRect(draw.R(Margin, Margin, fw-Margin, fh-Margin))

	half := float64(h/2) / sp
	top := max(int(s.value-half), s.min)
	bottom := min(int(s.value+half), s.max)
	for i := top; i <= bottom; i++ {
		y := ty + (float64(i)-s.value)*sp
		surf.Text(strconv.Itoa(i), tx, y, f, draw.Black)

		a := strconv.Itoa(s.AltitudeAt(i))
		surf.Text(a, fw-Margin-Padding-f.MeasureText(a), y, f, draw.Black)
	}
	surf.Restore()

	surf.Line(0, float64(h/2), fw-1, float64(h/2), draw.Red)
}
