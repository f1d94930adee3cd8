package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// Texture is a sampled image with its own bind group:
//
//	@binding(0) var t: texture_2d<f32>;
//	@binding(1) var s: sampler;
type Texture struct {
	device  hal.Device
	sampled *gpu.SampledTexture
	layout  hal.BindGroupLayout
	group   hal.BindGroup
	label   string
}

// newTexture uploads tightly packed RGBA8 pixels and builds the bind group.
func newTexture(device hal.Device, queue hal.Queue, label string, width, height uint32, rgba []byte) (*Texture, error) {
	sampled, err := gpu.CreateSampledTexture(device, queue, label, width, height, rgba)
	if err != nil {
		return nil, err
	}
	t := &Texture{device: device, sampled: sampled, label: label}

	t.layout, err = createTextureLayout(device, label+"_layout")
	if err != nil {
		t.Destroy()
		return nil, err
	}

	t.group, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_group",
		Layout: t.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: sampled.View.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: sampled.Sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("create texture group %s: %w", label, err)
	}
	return t, nil
}

func createTextureLayout(device hal.Device, label string) (hal.BindGroupLayout, error) {
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture layout %s: %w", label, err)
	}
	return layout, nil
}

// Bind sets the texture's group at the given bind group index.
func (t *Texture) Bind(index uint32, pass bindGroupSetter) {
	pass.SetBindGroup(index, t.group, nil)
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height uint32) {
	return t.sampled.Width, t.sampled.Height
}

// Layout returns the texture's bind group layout.
func (t *Texture) Layout() hal.BindGroupLayout { return t.layout }

// BindGroup returns the texture's bind group.
func (t *Texture) BindGroup() hal.BindGroup { return t.group }

// Destroy releases the group, the layout, and the GPU texture.
func (t *Texture) Destroy() {
	if t.group != nil {
		t.device.DestroyBindGroup(t.group)
		t.group = nil
	}
	if t.layout != nil {
		t.device.DestroyBindGroupLayout(t.layout)
		t.layout = nil
	}
	t.sampled.Destroy(t.device)
}

// DepthTexture is the depth attachment shared by every depth-tested node.
type DepthTexture struct {
	target *gpu.Target
}

// Size returns the attachment dimensions in pixels.
func (d *DepthTexture) Size() (width, height uint32) {
	return d.target.Width, d.target.Height
}

// View returns the attachment view.
func (d *DepthTexture) View() hal.TextureView { return d.target.View }
