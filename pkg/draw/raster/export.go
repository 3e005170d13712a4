package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ScaleToFit scales img down to fit within maxW x maxH, preserving aspect
// ratio. It never upscales.
func ScaleToFit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return img
	}

	ratio := float64(maxW) / float64(w)
	if rh := float64(maxH) / float64(h); rh < ratio {
		ratio = rh
	}
	newW := max(1, int(float64(w)*ratio))
	newH := max(1, int(float64(h)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// PNGBytes returns img encoded as PNG.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
