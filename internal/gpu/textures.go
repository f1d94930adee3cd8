package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrInvalidTextureSize is returned for zero-sized textures or pixel data
// that does not match the requested size.
var ErrInvalidTextureSize = errors.New("gpu: invalid texture size")

// SampledFormat is the format of every image texture.
const SampledFormat = gputypes.TextureFormatRGBA8UnormSrgb

// SampledTexture is an uploaded image with its view and sampler.
type SampledTexture struct {
	Texture hal.Texture
	View    hal.TextureView
	Sampler hal.Sampler
	Width   uint32
	Height  uint32
}

// CreateSampledTexture creates an RGBA8 sRGB texture, uploads rgba (tightly
// packed, 4 bytes per pixel), and creates a view and a linear clamp sampler.
func CreateSampledTexture(device hal.Device, queue hal.Queue, label string, width, height uint32, rgba []byte) (*SampledTexture, error) {
	if width == 0 || height == 0 || uint64(len(rgba)) != uint64(width)*uint64(height)*4 {
		return nil, fmt.Errorf("%s: %w: %dx%d with %d bytes", label, ErrInvalidTextureSize, width, height, len(rgba))
	}

	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        SampledFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	st := &SampledTexture{Texture: tex, Width: width, Height: height}

	err = queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		rgba,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&size,
	)
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("upload texture %s: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        SampledFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		st.Destroy(device)
		return nil, fmt.Errorf("create texture view %s: %w", label, err)
	}
	st.View = view

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		st.Destroy(device)
		return nil, fmt.Errorf("create sampler %s: %w", label, err)
	}
	st.Sampler = sampler

	slogger().Debug("texture uploaded", "label", label, "width", width, "height", height)
	return st, nil
}

// Destroy releases the sampler, view, and texture.
func (st *SampledTexture) Destroy(device hal.Device) {
	if st.Sampler != nil {
		device.DestroySampler(st.Sampler)
		st.Sampler = nil
	}
	if st.View != nil {
		device.DestroyTextureView(st.View)
		st.View = nil
	}
	if st.Texture != nil {
		device.DestroyTexture(st.Texture)
		st.Texture = nil
	}
}

// Target is a single-sample render attachment and its view.
type Target struct {
	Texture hal.Texture
	View    hal.TextureView
	Format  gputypes.TextureFormat
	Width   uint32
	Height  uint32
}

// CreateDepthTarget creates a Depth32Float attachment of the given size.
func CreateDepthTarget(device hal.Device, label string, width, height uint32) (*Target, error) {
	return createTarget(device, label, width, height, DepthFormat, gputypes.TextureUsageRenderAttachment)
}

// CreateColorTarget creates a color attachment that can also be copied
// out for readback.
func CreateColorTarget(device hal.Device, label string, width, height uint32, format gputypes.TextureFormat) (*Target, error) {
	return createTarget(device, label, width, height, format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
}

func createTarget(device hal.Device, label string, width, height uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*Target, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%s: %w: %dx%d", label, ErrInvalidTextureSize, width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}

	return &Target{Texture: tex, View: view, Format: format, Width: width, Height: height}, nil
}

// Destroy releases the view and texture.
func (t *Target) Destroy(device hal.Device) {
	if t.View != nil {
		device.DestroyTextureView(t.View)
		t.View = nil
	}
	if t.Texture != nil {
		device.DestroyTexture(t.Texture)
		t.Texture = nil
	}
}
