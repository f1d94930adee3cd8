package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// instanceSlot is the vertex buffer slot of the per-instance stream.
const instanceSlot = 1

// Submesh is one indexed draw: a vertex buffer and a uint32 index buffer.
type Submesh struct {
	Name       string
	vertices   hal.Buffer
	indices    hal.Buffer
	indexCount uint32
}

// IndexCount returns the number of indices.
func (s *Submesh) IndexCount() uint32 { return s.indexCount }

// Mesh is an ordered list of submeshes. An instanced mesh additionally
// carries an instance buffer and one set of draw arguments per submesh.
type Mesh struct {
	device    hal.Device
	submeshes []*Submesh
	instances *InstanceBuffer
	args      []gpu.DrawIndexedArgs
}

// newSubmesh uploads one vertex and index buffer pair.
func newSubmesh(device hal.Device, queue hal.Queue, name string, vertices []Vertex, indices []uint32) (*Submesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("submesh %s: %w", name, ErrEmptyMesh)
	}
	vb, err := gpu.CreateBufferInit(device, queue, name+"_vertices", vertexBytes(vertices), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	ib, err := gpu.CreateBufferInit(device, queue, name+"_indices", gpu.Uint32Bytes(indices...), gputypes.BufferUsageIndex)
	if err != nil {
		device.DestroyBuffer(vb)
		return nil, err
	}
	return &Submesh{
		Name:       name,
		vertices:   vb,
		indices:    ib,
		indexCount: uint32(len(indices)), //nolint:gosec // index counts fit in uint32
	}, nil
}

// Submeshes returns the submeshes in draw order.
func (m *Mesh) Submeshes() []*Submesh { return m.submeshes }

// Instanced reports whether the mesh carries an instance buffer.
func (m *Mesh) Instanced() bool { return m.instances != nil }

// Instances returns the instance buffer, or nil for a plain mesh.
func (m *Mesh) Instances() *InstanceBuffer { return m.instances }

// DrawArgs returns the baked draw arguments of an instanced mesh.
func (m *Mesh) DrawArgs() []gpu.DrawIndexedArgs { return m.args }

// WithInstances returns a copy of m that draws every submesh once per
// instance in ib. The copy shares m's GPU buffers; m is unchanged.
func (m *Mesh) WithInstances(ib *InstanceBuffer) *Mesh {
	args := make([]gpu.DrawIndexedArgs, len(m.submeshes))
	for i, sm := range m.submeshes {
		args[i] = gpu.DrawIndexedArgs{
			IndexCount:    sm.indexCount,
			InstanceCount: uint32(ib.Len()), //nolint:gosec // instance counts fit in uint32
		}
	}
	return &Mesh{
		device:    m.device,
		submeshes: m.submeshes,
		instances: ib,
		args:      args,
	}
}

// draw records the mesh's draws. The caller has set the pipeline and groups.
func (m *Mesh) draw(pass drawRecorder) {
	if m.instances != nil {
		pass.SetVertexBuffer(instanceSlot, m.instances.buffer, 0)
	}
	for i, sm := range m.submeshes {
		pass.SetVertexBuffer(0, sm.vertices, 0)
		pass.SetIndexBuffer(sm.indices, gputypes.IndexFormatUint32, 0)
		if m.instances == nil {
			pass.DrawIndexed(sm.indexCount, 1, 0, 0, 0)
			continue
		}
		a := m.args[i]
		pass.DrawIndexed(a.IndexCount, a.InstanceCount, a.FirstIndex, a.BaseVertex, a.FirstInstance)
	}
}

// destroy releases the submesh buffers. Only cache-owned meshes call it.
func (m *Mesh) destroy() {
	for _, sm := range m.submeshes {
		if sm.vertices != nil {
			m.device.DestroyBuffer(sm.vertices)
			sm.vertices = nil
		}
		if sm.indices != nil {
			m.device.DestroyBuffer(sm.indices)
			sm.indices = nil
		}
	}
}

// InstanceBuffer holds per-instance model matrices and their GPU copy.
// Set changes only the host copy until Update or UpdateRange is called.
type InstanceBuffer struct {
	device    hal.Device
	instances []Instance
	buffer    hal.Buffer
}

func newInstanceBuffer(device hal.Device, queue hal.Queue, label string, instances []Instance) (*InstanceBuffer, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("instance buffer %s: %w", label, ErrNoTransforms)
	}
	owned := append([]Instance(nil), instances...)
	buf, err := gpu.CreateBufferInit(device, queue, label, instanceBytes(owned), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	return &InstanceBuffer{device: device, instances: owned, buffer: buf}, nil
}

// Len returns the number of instances.
func (b *InstanceBuffer) Len() int { return len(b.instances) }

// Instances returns a copy of the host instances.
func (b *InstanceBuffer) Instances() []Instance {
	return append([]Instance(nil), b.instances...)
}

// Set replaces instance i in the host copy.
func (b *InstanceBuffer) Set(i int, inst Instance) error {
	if i < 0 || i >= len(b.instances) {
		return fmt.Errorf("set instance %d of %d: %w", i, len(b.instances), ErrInstanceRange)
	}
	b.instances[i] = inst
	return nil
}

// Update uploads every instance.
func (b *InstanceBuffer) Update(queue hal.Queue) error {
	if err := queue.WriteBuffer(b.buffer, 0, instanceBytes(b.instances)); err != nil {
		return fmt.Errorf("update instances: %w", err)
	}
	return nil
}

// UpdateRange uploads instances [start, end).
func (b *InstanceBuffer) UpdateRange(queue hal.Queue, start, end int) error {
	if start < 0 || end > len(b.instances) || start >= end {
		return fmt.Errorf("update instances [%d, %d) of %d: %w", start, end, len(b.instances), ErrInstanceRange)
	}
	offset := uint64(start) * InstanceStride
	if err := queue.WriteBuffer(b.buffer, offset, instanceBytes(b.instances[start:end])); err != nil {
		return fmt.Errorf("update instances [%d, %d): %w", start, end, err)
	}
	return nil
}

// Destroy releases the GPU buffer. Safe to call twice.
func (b *InstanceBuffer) Destroy() {
	if b.buffer != nil {
		b.device.DestroyBuffer(b.buffer)
		b.buffer = nil
	}
}
