package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// bindGroupSetter is the part of a render pass that binds groups.
type bindGroupSetter interface {
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
}

// UniformSet exposes uniform buffers as one bind group, buffer i at
// binding i. Adding a buffer rebuilds the layout and the group.
type UniformSet struct {
	device   hal.Device
	label    string
	buffers  []*UniformBuffer
	layout   hal.BindGroupLayout
	group    hal.BindGroup
	bindings []uint32
}

// NewUniformSet creates a set over buffers, in order.
func NewUniformSet(device hal.Device, label string, buffers ...*UniformBuffer) (*UniformSet, error) {
	s := &UniformSet{
		device:  device,
		label:   label,
		buffers: append([]*UniformBuffer(nil), buffers...),
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends buf at the next binding and rebuilds the bind group.
func (s *UniformSet) Add(buf *UniformBuffer) error {
	s.buffers = append(s.buffers, buf)
	if err := s.rebuild(); err != nil {
		s.buffers = s.buffers[:len(s.buffers)-1]
		return err
	}
	return nil
}

// rebuild replaces the layout and group. The old objects are released only
// after both new ones exist.
func (s *UniformSet) rebuild() error {
	layoutEntries := make([]gputypes.BindGroupLayoutEntry, len(s.buffers))
	groupEntries := make([]gputypes.BindGroupEntry, len(s.buffers))
	bindings := make([]uint32, len(s.buffers))
	for i, buf := range s.buffers {
		binding := uint32(i) //nolint:gosec // set sizes are small
		layoutEntries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
		groupEntries[i] = gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.Raw().NativeHandle(), Offset: 0, Size: buf.padded,
			},
		}
		bindings[i] = binding
	}

	layout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   s.label + "_layout",
		Entries: layoutEntries,
	})
	if err != nil {
		return fmt.Errorf("create uniform layout %s: %w", s.label, err)
	}

	group, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   s.label + "_group",
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		s.device.DestroyBindGroupLayout(layout)
		return fmt.Errorf("create uniform group %s: %w", s.label, err)
	}

	s.release()
	s.layout = layout
	s.group = group
	s.bindings = bindings
	Logger().Debug("uniform set rebuilt", "label", s.label, "buffers", len(s.buffers))
	return nil
}

// Bind sets the group at the given bind group index.
func (s *UniformSet) Bind(index uint32, pass bindGroupSetter) {
	pass.SetBindGroup(index, s.group, nil)
}

// Len returns the number of buffers.
func (s *UniformSet) Len() int { return len(s.buffers) }

// Buffers returns the buffers in binding order.
func (s *UniformSet) Buffers() []*UniformBuffer {
	return append([]*UniformBuffer(nil), s.buffers...)
}

// Bindings returns the binding index of each entry of the current group.
func (s *UniformSet) Bindings() []uint32 {
	return append([]uint32(nil), s.bindings...)
}

// Layout returns the current bind group layout.
func (s *UniformSet) Layout() hal.BindGroupLayout { return s.layout }

// BindGroup returns the current bind group.
func (s *UniformSet) BindGroup() hal.BindGroup { return s.group }

func (s *UniformSet) release() {
	if s.group != nil {
		s.device.DestroyBindGroup(s.group)
		s.group = nil
	}
	if s.layout != nil {
		s.device.DestroyBindGroupLayout(s.layout)
		s.layout = nil
	}
}

// Destroy releases the group, the layout and every buffer.
func (s *UniformSet) Destroy() {
	s.release()
	for _, buf := range s.buffers {
		buf.Destroy()
	}
}
