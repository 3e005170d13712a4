// Package raster is a draw.Surface that paints into an *image.RGBA using
// the x/image vector rasterizer and font drawer.
package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"altimeter/pkg/draw"
)

// Canvas implements draw.Surface. Every paint operation is rendered to a
// coverage mask, intersected with the current clip and composited with
// Over.
type Canvas struct {
	img   *image.RGBA
	z     *vector.Rasterizer
	clip  *image.Alpha // nil when unclipped
	stack []*image.Alpha

	// LineWidth is the stroke width in pixels.
	LineWidth float64
}

// New creates a transparent w by h canvas.
func New(w, h int) *Canvas {
	return &Canvas{
		img:       image.NewRGBA(image.Rect(0, 0, w, h)),
		z:         vector.NewRasterizer(w, h),
		LineWidth: 1,
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.clip)
}

func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.clip = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *Canvas) ClipPath(p *draw.Path) {
	m := c.fillMask(p)
	if c.clip != nil {
		intersect(m, c.clip)
	}
	c.clip = m
}

func (c *Canvas) ClipRect(r draw.Rect) {
	c.ClipPath(draw.RectPath(r))
}

func (c *Canvas) FillPath(p *draw.Path, col color.Color) {
	c.paint(c.fillMask(p), col)
}

func (c *Canvas) StrokePath(p *draw.Path, col color.Color) {
	c.paint(c.strokeMask(p), col)
}

func (c *Canvas) FillRect(r draw.Rect, col color.Color) {
	c.FillPath(draw.RectPath(r), col)
}

func (c *Canvas) StrokeRect(r draw.Rect, col color.Color) {
	c.StrokePath(draw.RectPath(r), col)
}

func (c *Canvas) Line(x0, y0, x1, y1 float64, col color.Color) {
	p := &draw.Path{}
	p.MoveTo(x0, y0)
	p.LineTo(x1, y1)
	c.StrokePath(p, col)
}

// Text draws s with its baseline origin at (x, y). Fonts that are not a
// *Face fall back to the 7x13 bitmap face.
func (c *Canvas) Text(s string, x, y float64, f draw.Font, col color.Color) {
	m := image.NewAlpha(c.img.Bounds())
	d := font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: faceOf(f),
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(s)
	c.paint(m, col)
}

func (c *Canvas) paint(m *image.Alpha, col color.Color) {
	if c.clip != nil {
		intersect(m, c.clip)
	}
	b := c.img.Bounds()
	xdraw.DrawMask(c.img, b, image.NewUniform(col), image.Point{}, m, b.Min, xdraw.Over)
}

func (c *Canvas) fillMask(p *draw.Path) *image.Alpha {
	b := c.img.Bounds()
	m := image.NewAlpha(b)
	c.z.Reset(b.Dx(), b.Dy())
	for _, contour := range p.Contours {
		if len(contour) < 2 {
			continue
		}
		c.z.MoveTo(float32(contour[0].X), float32(contour[0].Y))
		for _, pt := range contour[1:] {
			c.z.LineTo(float32(pt.X), float32(pt.Y))
		}
		c.z.ClosePath()
	}
	c.z.Draw(m, b, image.Opaque, image.Point{})
	return m
}

// strokeMask rasterizes each segment as its own square-capped quad so that
// overlapping joins add coverage instead of cancelling.
func (c *Canvas) strokeMask(p *draw.Path) *image.Alpha {
	b := c.img.Bounds()
	m := image.NewAlpha(b)
	hw := c.LineWidth / 2

	for i, contour := range p.Contours {
		n := len(contour)
		segs := n - 1
		if p.Closed(i) {
			segs = n
		}
		for j := 0; j < segs; j++ {
			a, e := contour[j], contour[(j+1)%n]
			dx, dy := e.X-a.X, e.Y-a.Y
			l := math.Hypot(dx, dy)
			if l == 0 {
				continue
			}
			ux, uy := dx/l*hw, dy/l*hw
			nx, ny := -uy, ux

			c.z.Reset(b.Dx(), b.Dy())
			c.z.MoveTo(float32(a.X-ux+nx), float32(a.Y-uy+ny))
			c.z.LineTo(float32(e.X+ux+nx), float32(e.Y+uy+ny))
			c.z.LineTo(float32(e.X+ux-nx), float32(e.Y+uy-ny))
			c.z.LineTo(float32(a.X-ux-nx), float32(a.Y-uy-ny))
			c.z.ClosePath()
			c.z.Draw(m, b, image.Opaque, image.Point{})
		}
	}
	return m
}

// intersect scales dst coverage by clip coverage. Both masks share bounds.
func intersect(dst, clip *image.Alpha) {
	for i := range dst.Pix {
		dst.Pix[i] = uint8(uint16(dst.Pix[i]) * uint16(clip.Pix[i]) / 0xff)
	}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
