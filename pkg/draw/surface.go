// Package draw defines the abstract 2D surface the instrument renders onto.
//
// Coordinates are pixels, origin top-left, y increasing downward. Text is
// positioned by its baseline-left point.
package draw

import (
	"image/color"
	"math"
)

// Common colors.
var (
	Black = color.RGBA{A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red   = color.RGBA{R: 0xff, A: 0xff}
)

// Font provides the metrics a layout needs. Backends that draw real glyphs
// type-assert for their own face type.
type Font interface {
	// MeasureText returns the advance width of s.
	MeasureText(s string) float64
	// TextBounds returns the ink bounds of s relative to the baseline origin.
	TextBounds(s string) Rect
	// Ascent is the distance above the baseline, positive.
	Ascent() float64
	// Spacing is the recommended line spacing.
	Spacing() float64
}

// Surface receives draw commands.
type Surface interface {
	Save()
	Restore()
	ClipPath(p *Path)
	ClipRect(r Rect)
	FillPath(p *Path, c color.Color)
	StrokePath(p *Path, c color.Color)
	FillRect(r Rect, c color.Color)
	StrokeRect(r Rect, c color.Color)
	Line(x0, y0, x1, y1 float64, c color.Color)
	Text(s string, x, y float64, f Font, c color.Color)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// R is shorthand for Rect{l, t, r, b}.
func R(l, t, r, b float64) Rect {
	return Rect{Left: l, Top: t, Right: r, Bottom: b}
}

// Width of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   math.Max(r.Left, o.Left),
		Top:    math.Max(r.Top, o.Top),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Offset returns r moved by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{r.Left + dx, r.Top + dy, r.Right + dx, r.Bottom + dy}
}

// Point is a path vertex.
type Point struct {
	X, Y float64
}

// Path is a sequence of closed or open polygons.
type Path struct {
	Contours [][]Point
	closed   []bool
	cur      Point
}

// Rewind clears the path.
func (p *Path) Rewind() {
	p.Contours = p.Contours[:0]
	p.closed = p.closed[:0]
	p.cur = Point{}
}

// MoveTo starts a new contour.
func (p *Path) MoveTo(x, y float64) {
	p.cur = Point{x, y}
	p.Contours = append(p.Contours, []Point{p.cur})
	p.closed = append(p.closed, false)
}

// LineTo adds an absolute vertex.
func (p *Path) LineTo(x, y float64) {
	if len(p.Contours) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.cur = Point{x, y}
	last := len(p.Contours) - 1
	p.Contours[last] = append(p.Contours[last], p.cur)
}

// RLineTo adds a vertex relative to the current point.
func (p *Path) RLineTo(dx, dy float64) {
	p.LineTo(p.cur.X+dx, p.cur.Y+dy)
}

// Close closes the current contour.
func (p *Path) Close() {
	if len(p.closed) > 0 {
		p.closed[len(p.closed)-1] = true
		first := p.Contours[len(p.Contours)-1][0]
		p.cur = first
	}
}

// Closed reports whether contour i was closed.
func (p *Path) Closed(i int) bool {
	return i < len(p.closed) && p.closed[i]
}

// Bounds returns the bounding box of all vertices.
func (p *Path) Bounds() Rect {
	first := true
	var b Rect
	for _, c := range p.Contours {
		for _, pt := range c {
			if first {
				b = Rect{pt.X, pt.Y, pt.X, pt.Y}
				first = false
				continue
			}
			b.Left = math.Min(b.Left, pt.X)
			b.Top = math.Min(b.Top, pt.Y)
			b.Right = math.Max(b.Right, pt.X)
			b.Bottom = math.Max(b.Bottom, pt.Y)
		}
	}
	return b
}

// Contains reports whether (x, y) is inside the path under the even-odd
// rule. Open contours are treated as closed.
func (p *Path) Contains(x, y float64) bool {
	inside := false
	for _, c := range p.Contours {
		n := len(c)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := c[i], c[j]
			if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}

// RectPath returns a closed path tracing r.
func RectPath(r Rect) *Path {
	p := &Path{}
	p.MoveTo(r.Left, r.Top)
	p.LineTo(r.Right, r.Top)
	p.LineTo(r.Right, r.Bottom)
	p.LineTo(r.Left, r.Bottom)
	p.Close()
	return p
}
