package gpu

import (
	"bytes"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestAlignedBytesPerRow(t *testing.T) {
	tests := []struct {
		width uint32
		want  uint32
	}{
		{1, 256},
		{64, 256},
		{65, 512},
		{100, 512},
		{128, 512},
	}
	for _, tt := range tests {
		if got := AlignedBytesPerRow(tt.width); got != tt.want {
			t.Errorf("AlignedBytesPerRow(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestStripRowPadding(t *testing.T) {
	// 2x2 pixels with rows 12 bytes apart (4 bytes of padding per row).
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0,
		9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0,
	}
	got := StripRowPadding(src, 2, 2, 12)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if !bytes.Equal(got, want) {
		t.Errorf("StripRowPadding = %v, want %v", got, want)
	}

	tight := StripRowPadding(want, 2, 2, 8)
	if !bytes.Equal(tight, want) {
		t.Errorf("unpadded rows changed: %v", tight)
	}
}

func TestSwizzleBGRA(t *testing.T) {
	pix := []byte{10, 20, 30, 40, 1, 2, 3, 4}
	SwizzleBGRA(pix)
	want := []byte{30, 20, 10, 40, 3, 2, 1, 4}
	if !bytes.Equal(pix, want) {
		t.Errorf("SwizzleBGRA = %v, want %v", pix, want)
	}
}

func TestReadTarget(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	target, err := CreateColorTarget(device, "readback_color", 10, 3, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("CreateColorTarget failed: %v", err)
	}
	defer target.Destroy(device)

	pixels, err := ReadTarget(device, queue, target)
	if err != nil {
		t.Fatalf("ReadTarget failed: %v", err)
	}
	if len(pixels) != 10*3*4 {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), 10*3*4)
	}
}
