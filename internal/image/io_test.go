package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
		format string
	}{
		{"png", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }, "png"},
		{"bmp", func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) }, "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf, testImage()); err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			got, err := LoadFromBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("LoadFromBytes failed: %v", err)
			}
			if got.Format != tt.format {
				t.Errorf("Format = %q, want %q", got.Format, tt.format)
			}
			if got.Width != 2 || got.Height != 2 || len(got.Pix) != 16 {
				t.Fatalf("size = %dx%d (%d bytes), want 2x2 (16 bytes)", got.Width, got.Height, len(got.Pix))
			}
			if c := got.At(1, 0); c != (color.NRGBA{G: 255, A: 255}) {
				t.Errorf("At(1, 0) = %v, want green", c)
			}
			if c := got.At(1, 1); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
				t.Errorf("At(1, 1) = %v", c)
			}
		})
	}
}

func TestFromStdImageConvertsRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(2, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	got, err := FromStdImage(src)
	if err != nil {
		t.Fatalf("FromStdImage failed: %v", err)
	}
	if c := got.At(2, 0); c != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("At(2, 0) = %v", c)
	}
}

func TestFromStdImageSubImage(t *testing.T) {
	sub := testImage().SubImage(image.Rect(1, 1, 2, 2))
	got, err := FromStdImage(sub)
	if err != nil {
		t.Fatalf("FromStdImage failed: %v", err)
	}
	if got.Width != 1 || got.Height != 1 {
		t.Fatalf("size = %dx%d, want 1x1", got.Width, got.Height)
	}
	if c := got.At(0, 0); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("At(0, 0) = %v", c)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := LoadFromBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
	if _, err := LoadFromBytes([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := FromStdImage(image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSavePNGRoundTrip(t *testing.T) {
	src, err := FromStdImage(testImage())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := src.SavePNG(path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("pixels differ after PNG round trip")
	}
}
