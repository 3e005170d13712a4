package raster

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"altimeter/pkg/draw"
)

// Face adapts a font.Face to draw.Font.
type Face struct {
	face font.Face
}

// NewFace loads Go Mono at the given pixel size.
func NewFace(size float64) (*Face, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gomono: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return &Face{face: face}, nil
}

// WrapFace adapts an existing face.
func WrapFace(f font.Face) *Face {
	return &Face{face: f}
}

func (f *Face) MeasureText(s string) float64 {
	return fromFixed(font.MeasureString(f.face, s))
}

func (f *Face) TextBounds(s string) draw.Rect {
	b, _ := font.BoundString(f.face, s)
	return draw.R(fromFixed(b.Min.X), fromFixed(b.Min.Y), fromFixed(b.Max.X), fromFixed(b.Max.Y))
}

func (f *Face) Ascent() float64 {
	return fromFixed(f.face.Metrics().Ascent)
}

func (f *Face) Spacing() float64 {
	return fromFixed(f.face.Metrics().Height)
}

// Close releases the face.
func (f *Face) Close() error {
	return f.face.Close()
}

func faceOf(f draw.Font) font.Face {
	if ff, ok := f.(*Face); ok && ff != nil {
		return ff.face
	}
	return basicfont.Face7x13
}
