// Package gauge draws a numeric readout with odometer-style scrolling
// digits. Values are floats so the digits scroll smoothly, but only whole
// multiples of the step are ever shown.
//
//	       +--+
//	  ,+---+40|
//	 h | 12   |  y
//	  `*---+20|
//	       +--+
//	   x
//
// The low-order (trailing) digits roll continuously; the leading digits
// roll only while the trailing block wraps.
package gauge

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"altimeter/pkg/draw"
)

// DefaultPadding is the space between text and box edge, in pixels.
const DefaultPadding = 5

// ErrInvalidConfig is returned for gauge options that cannot be laid out.
var ErrInvalidConfig = errors.New("invalid gauge configuration")

// Arrow selects the optional pointer notch on one end of the box.
type Arrow int

const (
	ArrowLeft  Arrow = -1
	ArrowNone  Arrow = 0
	ArrowRight Arrow = 1
)

// Options configure a Gauge. They are fixed once the gauge is built.
type Options struct {
	Arrow         Arrow
	MaxValue      int
	Step          int
	AllowNegative bool
	Font          draw.Font
	Padding       float64
	Background    color.Color
	Foreground    color.Color
}

// Gauge is a scrolling-digit readout.
type Gauge struct {
	arrow    Arrow
	step     int
	allowNeg bool
	font     draw.Font
	bg, fg   color.Color

	pad  float64
	w, h int
	y    int
	xt   float64 // right edge of text
	yt   float64 // text baseline
	tw   float64 // full text width
	tw2  float64 // width of the trailing digits
	dw   float64 // width of one digit
	th   float64 // row height, text plus padding
	tpad float64

	trailingDigits  int
	trailingModulus int

	path  draw.Path
	value float64
}

// New lays out a gauge.
func New(opts Options) (*Gauge, error) {
	if opts.Step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidConfig, opts.Step)
	}
	if opts.MaxValue <= 0 {
		return nil, fmt.Errorf("%w: max value must be positive, got %d", ErrInvalidConfig, opts.MaxValue)
	}
	if opts.Font == nil {
		return nil, fmt.Errorf("%w: font is required", ErrInvalidConfig)
	}

	g := &Gauge{
		arrow:    opts.Arrow,
		step:     opts.Step,
		allowNeg: opts.AllowNegative,
		font:     opts.Font,
		bg:       opts.Background,
		fg:       opts.Foreground,
		pad:      opts.Padding,
	}
	if g.pad <= 0 {
		g.pad = DefaultPadding
	}
	if g.bg == nil {
		g.bg = draw.Black
	}
	if g.fg == nil {
		g.fg = draw.White
	}

	s := strconv.Itoa(opts.MaxValue)
	g.tw = g.font.MeasureText(s)

	// Ascent includes whitespace above the glyphs, which unbalances the
	// box. Use the measured ink height instead.
	g.th = g.font.TextBounds(s).Height()
	g.tpad = g.pad
	g.th += g.pad * 2

	g.w = int(g.tw + g.pad*2)
	g.h = int(g.th + g.pad*2)
	if g.arrow != ArrowNone {
		g.w += g.h / 2
	}

	for st := opts.Step; st > 0; st /= 10 {
		g.trailingDigits++
	}
	g.trailingModulus = 1
	for i := 0; i < g.trailingDigits; i++ {
		g.trailingModulus *= 10
	}
	g.dw = g.font.MeasureText("9")
	g.tw2 = g.dw * float64(g.trailingDigits)

	g.SetPosition(0, 0)
	return g, nil
}

// Size returns the space the gauge needs, including the taller trailing box.
func (g *Gauge) Size() (w, h int) {
	return g.w, int(float64(g.h) + g.th)
}

// RowHeight is the vertical distance between adjacent digit rows.
func (g *Gauge) RowHeight() float64 { return g.th }

// DigitWidth is the advance of one digit.
func (g *Gauge) DigitWidth() float64 { return g.dw }

// TrailingDigits is the number of continuously rolling low-order digits.
func (g *Gauge) TrailingDigits() int { return g.trailingDigits }

// TrailingModulus is 10^TrailingDigits.
func (g *Gauge) TrailingModulus() int { return g.trailingModulus }

// Baseline returns the text baseline and the right edge of the text.
func (g *Gauge) Baseline() (xRight, y float64) { return g.xt, g.yt }

// Outline returns the box outline, which is also the clip.
func (g *Gauge) Outline() *draw.Path { return &g.path }

// SetPosition places the gauge with its left edge at x and its vertical
// center at y.
func (g *Gauge) SetPosition(x, y int) {
	hh := float64(g.h / 2)
	if g.arrow == ArrowLeft {
		x += g.h / 2
	}
	g.y = y

	g.xt = float64(x) + g.pad + g.tw
	g.yt = float64(y) + g.th/2 - g.tpad

	p := &g.path
	p.Rewind()
	p.MoveTo(float64(x), float64(y)+hh)
	if g.arrow == ArrowLeft {
		p.RLineTo(-hh, -hh)
		p.RLineTo(hh, -hh)
	} else {
		p.RLineTo(0, -float64(g.h))
	}
	p.RLineTo(g.tw-g.tw2+g.pad, 0)
	p.RLineTo(0, -g.th/2)
	p.RLineTo(g.tw2+g.pad, 0)
	if g.arrow == ArrowRight {
		p.RLineTo(0, g.th/2)
		p.RLineTo(hh, hh)
		p.RLineTo(-hh, hh)
		p.RLineTo(0, g.th/2)
	} else {
		p.RLineTo(0, float64(g.h)+g.th)
	}
	p.RLineTo(-g.tw2-g.pad, 0)
	p.RLineTo(0, -g.th/2)
	p.Close()
}

// SetValue sets the value to display. A gauge without AllowNegative still
// accepts negative values but draws no sign and no rows below them.
func (g *Gauge) SetValue(v float64) {
	g.value = v
}

// Value returns the value last set.
func (g *Gauge) Value() float64 {
	return g.value
}

// Render draws the gauge.
func (g *Gauge) Render(s draw.Surface) {
	s.Save()
	defer s.Restore()

	s.FillPath(&g.path, g.bg)
	s.StrokePath(&g.path, g.fg)
	s.ClipPath(&g.path)

	// Round down to a multiple of step; the remainder is how far the
	// trailing digits have scrolled toward the bottom of the screen.
	step := g.step
	ival := int(math.Floor(g.value/float64(step)) * float64(step))
	scroll := g.th * (g.value - float64(ival)) / float64(step)

	// Four candidate rows: the current tick, two above, one below.
	// Values increase toward the top. At least one is usually clipped.
	x := g.xt - g.tw2

	g.text(s, g.formatTrail(ival), x, g.yt+scroll)

	// v2 wrapping to zero means the leading digits scroll too.
	v2 := ival + step
	g.text(s, g.formatTrail(v2), x, g.yt+scroll-g.th)

	if !g.clipped(g.yt + scroll - g.th*2) {
		v3 := v2 + step
		g.text(s, g.formatTrail(v3), x, g.yt+scroll-g.th*2)
	}

	if !g.clipped(g.yt + scroll + g.th) {
		v0 := ival - step
		if v0 >= 0 || g.allowNeg {
			g.text(s, g.formatTrail(v0), x, g.yt+scroll+g.th)
		}
	}

	// Leading digits: the current digit and the next one up, rolling with
	// the trailing block only while it wraps. No leading zeros.
	negative := ival < 0
	if negative {
		ival = -ival
	}
	var roll bool
	if negative {
		roll = ival%g.trailingModulus == 0
	} else {
		roll = v2%g.trailingModulus == 0
	}
	ival /= g.trailingModulus

	for {
		digit := ival % 10
		ival /= 10
		x -= g.dw
		switch {
		case roll && !negative:
			g.text(s, format1(digit+1), x, g.yt+scroll-g.th)
			if ival != 0 || digit != 0 {
				g.text(s, format1(digit), x, g.yt+scroll)
			}
			roll = digit == 9
		case roll:
			if ival != 0 || digit != 0 {
				g.text(s, format1(digit), x, g.yt+scroll)
			}
			if ival != 0 || digit != 1 {
				g.text(s, format1(digit-1), x, g.yt+scroll-g.th)
			}
			roll = digit == 0
		case ival != 0 || digit != 0:
			g.text(s, format1(digit), x, g.yt)
		}
		if ival <= 0 && !roll {
			break
		}
	}
	if negative && g.allowNeg {
		g.text(s, "-", x-g.dw, g.yt)
	}
}

func (g *Gauge) text(s draw.Surface, str string, x, y float64) {
	s.Text(str, x, y, g.font, g.fg)
}

// formatTrail renders the trailing block, zero padded, without sign.
func (g *Gauge) formatTrail(v int) string {
	if v < 0 {
		v = -v
	}
	buf := make([]byte, g.trailingDigits)
	for i := g.trailingDigits - 1; i >= 0; i-- {
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf)
}

// format1 renders one digit, wrapping -1 to 9 and 10 to 0.
func format1(v int) string {
	if v < 0 {
		v += 10
	} else if v >= 10 {
		v -= 10
	}
	return string(rune('0' + v))
}

// clipped reports whether a row with its baseline at yt is entirely
// outside the box.
func (g *Gauge) clipped(yt float64) bool {
	top := float64(g.y-g.h/2) - g.th/2
	bottom := float64(g.y+g.h/2) + g.th/2
	return yt < top || yt-g.th > bottom
}
