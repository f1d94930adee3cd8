package gpu

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the WebGPU row alignment for texture-to-buffer copies.
const copyPitchAlignment = 256

// readbackTimeout bounds the completion wait in ReadTarget.
const readbackTimeout = 5 * time.Second

// ErrSubmissionTimeout is returned when submitted work does not complete in time.
var ErrSubmissionTimeout = errors.New("gpu: submission did not complete in time")

// AlignedBytesPerRow rounds a row of width RGBA8 pixels up to the copy pitch.
func AlignedBytesPerRow(width uint32) uint32 {
	bytesPerRow := width * 4
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// ReadTarget copies a color target to host memory and returns tightly
// packed RGBA8 pixels. BGRA targets are swizzled. The call blocks until the copy completes.
func ReadTarget(device hal.Device, queue hal.Queue, target *Target) ([]byte, error) {
	w, h := target.Width, target.Height
	alignedBytesPerRow := AlignedBytesPerRow(w)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: target.Texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(target.Texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: target.Texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: target.Texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	index, err := Submit(queue, cmdBuf)
	if err != nil {
		return nil, err
	}
	if !WaitSubmission(queue, index, readbackTimeout) {
		return nil, fmt.Errorf("wait for GPU: %w", ErrSubmissionTimeout)
	}

	mapping, err := device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	raw := make([]byte, stagingSize)
	copy(raw, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}

	pixels := StripRowPadding(raw, w, h, alignedBytesPerRow)
	if isBGRA(target.Format) {
		SwizzleBGRA(pixels)
	}
	return pixels, nil
}

// StripRowPadding copies h rows of width*4 bytes out of a buffer whose rows
// are pitch bytes apart.
func StripRowPadding(src []byte, width, height, pitch uint32) []byte {
	bytesPerRow := width * 4
	if pitch == bytesPerRow {
		return src[:uint64(bytesPerRow)*uint64(height)]
	}
	tight := make([]byte, uint64(bytesPerRow)*uint64(height))
	for row := uint32(0); row < height; row++ {
		srcOff := uint64(row) * uint64(pitch)
		dstOff := uint64(row) * uint64(bytesPerRow)
		copy(tight[dstOff:dstOff+uint64(bytesPerRow)], src[srcOff:srcOff+uint64(bytesPerRow)])
	}
	return tight
}

// SwizzleBGRA swaps the red and blue channels of 4-byte pixels in place.
func SwizzleBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

func isBGRA(format gputypes.TextureFormat) bool {
	return format == gputypes.TextureFormatBGRA8Unorm || format == gputypes.TextureFormatBGRA8UnormSrgb
}
