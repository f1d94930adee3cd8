// Package image decodes texture images into tightly packed RGBA8 pixels and
// encodes rendered frames back to PNG.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// I/O errors.
var (
	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")

	// ErrEmptyImage is returned for zero-sized images.
	ErrEmptyImage = errors.New("image: zero-sized image")
)

// RGBA is a tightly packed 8-bit RGBA pixel buffer (stride = Width*4).
type RGBA struct {
	Width  int
	Height int
	Pix    []byte
	Format string
}

// Load decodes the image file at path. The format is detected from content.
func Load(path string) (*RGBA, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadFromBytes decodes an image held in memory.
func LoadFromBytes(data []byte) (*RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r, auto-detecting the format.
func Decode(r io.Reader) (*RGBA, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	buf, err := FromStdImage(img)
	if err != nil {
		return nil, err
	}
	buf.Format = format
	return buf, nil
}

// FromStdImage converts any image.Image to tight non-premultiplied RGBA.
func FromStdImage(img image.Image) (*RGBA, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	// Fast path for NRGBA images with a tight stride.
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == w*4 && nrgba.Rect.Min == (image.Point{}) {
		pix := make([]byte, len(nrgba.Pix))
		copy(pix, nrgba.Pix)
		return &RGBA{Width: w, Height: h, Pix: pix}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)
	return &RGBA{Width: w, Height: h, Pix: dst.Pix}, nil
}

// ToStdImage wraps the pixels as an *image.NRGBA without copying.
func (b *RGBA) ToStdImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// At returns the pixel at (x, y).
func (b *RGBA) At(x, y int) color.NRGBA {
	i := (y*b.Width + x) * 4
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// EncodePNG encodes the pixels as PNG to w.
func (b *RGBA) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the pixels to a PNG file.
func (b *RGBA) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
