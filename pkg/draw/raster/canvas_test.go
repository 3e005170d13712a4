package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"altimeter/pkg/draw"
)

func alphaAt(c *Canvas, x, y int) uint8 {
	return c.Image().RGBAAt(x, y).A
}

func TestCanvas_FillRect(t *testing.T) {
	c := New(40, 40)
	c.FillRect(draw.R(10, 10, 30, 30), draw.Red)

	if got := c.Image().RGBAAt(20, 20); got != draw.Red {
		t.Errorf("inside: expected red, got %v", got)
	}
	if a := alphaAt(c, 5, 5); a != 0 {
		t.Errorf("outside: expected transparent, got alpha %d", a)
	}
}

func TestCanvas_ClipAndRestore(t *testing.T) {
	c := New(40, 40)

	c.Save()
	c.ClipRect(draw.R(0, 0, 20, 40))
	c.FillRect(draw.R(0, 0, 40, 40), draw.White)
	c.Restore()

	if a := alphaAt(c, 10, 10); a != 0xff {
		t.Errorf("inside clip: expected opaque, got %d", a)
	}
	if a := alphaAt(c, 30, 10); a != 0 {
		t.Errorf("outside clip: expected transparent, got %d", a)
	}

	// Clip is gone after Restore.
	c.FillRect(draw.R(0, 0, 40, 40), draw.Black)
	if got := c.Image().RGBAAt(30, 10); got != draw.Black {
		t.Errorf("after restore: expected black, got %v", got)
	}
}

func TestCanvas_NestedClipIntersects(t *testing.T) {
	c := New(40, 40)
	c.ClipRect(draw.R(0, 0, 20, 40))
	c.ClipRect(draw.R(10, 0, 40, 40))
	c.FillRect(draw.R(0, 0, 40, 40), draw.White)

	for _, tc := range []struct {
		x    int
		want uint8
	}{{5, 0}, {15, 0xff}, {25, 0}} {
		if a := alphaAt(c, tc.x, 5); a != tc.want {
			t.Errorf("x=%d: expected alpha %d, got %d", tc.x, tc.want, a)
		}
	}
}

func TestCanvas_Line(t *testing.T) {
	c := New(40, 40)
	c.Line(0, 20.5, 40, 20.5, draw.White)

	if a := alphaAt(c, 10, 20); a != 0xff {
		t.Errorf("on line: expected opaque, got %d", a)
	}
	if a := alphaAt(c, 10, 25); a != 0 {
		t.Errorf("off line: expected transparent, got %d", a)
	}
}

func TestCanvas_StrokeClosedPath(t *testing.T) {
	c := New(40, 40)
	c.StrokeRect(draw.R(10.5, 10.5, 29.5, 29.5), draw.White)

	if a := alphaAt(c, 10, 20); a == 0 {
		t.Error("closing edge not stroked")
	}
	if a := alphaAt(c, 20, 10); a == 0 {
		t.Error("top edge not stroked")
	}
	if a := alphaAt(c, 20, 20); a != 0 {
		t.Errorf("interior painted: alpha %d", a)
	}
}

func TestCanvas_Text(t *testing.T) {
	face, err := NewFace(18)
	if err != nil {
		t.Fatalf("NewFace failed: %v", err)
	}
	defer face.Close()

	c := New(40, 40)
	c.Text("8", 5, 30, face, draw.White)

	var inked int
	b := c.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if alphaAt(c, x, y) > 0 {
				inked++
				if y > 31 {
					t.Fatalf("ink below baseline at %d,%d", x, y)
				}
			}
		}
	}
	if inked == 0 {
		t.Error("expected glyph pixels")
	}
}

func TestCanvas_TextFallbackFace(t *testing.T) {
	c := New(40, 40)
	c.Text("8", 5, 20, draw.DefaultMonoFont, draw.White)

	var inked bool
	for x := 0; x < 40 && !inked; x++ {
		for y := 0; y < 40; y++ {
			if alphaAt(c, x, y) > 0 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("fallback face drew nothing")
	}
}

func TestFace_Metrics(t *testing.T) {
	face, err := NewFace(20)
	if err != nil {
		t.Fatalf("NewFace failed: %v", err)
	}
	defer face.Close()

	one := face.MeasureText("0")
	if one <= 0 {
		t.Fatalf("expected positive advance, got %v", one)
	}
	if got := face.MeasureText("00000"); got != 5*one {
		t.Errorf("monospace: expected %v, got %v", 5*one, got)
	}
	if face.Ascent() <= 0 || face.Spacing() < face.Ascent() {
		t.Errorf("bad metrics: ascent %v spacing %v", face.Ascent(), face.Spacing())
	}
	if b := face.TextBounds("50000"); b.Top >= 0 || b.Height() <= 0 {
		t.Errorf("ink bounds should sit above the baseline: %+v", b)
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out := ScaleToFit(src, 50, 50)
	if b := out.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", b.Dx(), b.Dy())
	}

	if ScaleToFit(src, 200, 200) != image.Image(src) {
		t.Error("small image should be returned as is")
	}
}

func TestSavePNG(t *testing.T) {
	c := New(8, 8)
	c.FillRect(draw.R(0, 0, 8, 8), color.RGBA{G: 0xff, A: 0xff})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(path, c.Image()); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	data, err := PNGBytes(c.Image())
	if err != nil {
		t.Fatalf("PNGBytes failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, g, _, _ := img.At(4, 4).RGBA(); g != 0xffff {
		t.Errorf("expected green, got g=%d", g)
	}
}
