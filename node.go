package rendergraph

import (
	"fmt"
	"os"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// defaultClearColor is the color node 0 clears to unless overridden.
var defaultClearColor = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

type opKind uint8

const (
	opBindTexture opKind = iota
	opDrawMesh
	opDrawInstanced
)

func (k opKind) String() string {
	switch k {
	case opBindTexture:
		return "BindTexture"
	case opDrawMesh:
		return "DrawMesh"
	case opDrawInstanced:
		return "DrawMeshInstanced"
	default:
		return fmt.Sprintf("opKind(%d)", int(k))
	}
}

// drawOp is one resolved command. Instanced draws carry their decorated
// mesh; every other op is looked up in the cache at execute time.
type drawOp struct {
	kind   opKind
	handle ResourceHandle
	slot   uint32
	mesh   *Mesh
}

// NodeBuilder collects the commands and uniforms of one render node.
// Build turns it into a Node exactly once.
type NodeBuilder struct {
	name     string
	device   hal.Device
	queue    hal.Queue
	commands []Command
	static   *UniformSet
	dynamic  *UniformSet
	useDepth bool
	built    bool

	explicitSlots bool
	albedoSlot    uint32
	normalSlot    uint32
}

// NewNodeBuilder returns an empty builder. Most callers use Renderer.NewNode.
func NewNodeBuilder(name string, device hal.Device, queue hal.Queue) *NodeBuilder {
	return &NodeBuilder{
		name:   name,
		device: device,
		queue:  queue,
	}
}

// Name returns the node name.
func (b *NodeBuilder) Name() string { return b.name }

// AddCommand appends cmd to the command list.
func (b *NodeBuilder) AddCommand(cmd Command) *NodeBuilder {
	b.commands = append(b.commands, cmd)
	return b
}

// UseDepth enables or disables depth testing for the node.
func (b *NodeBuilder) UseDepth(enabled bool) *NodeBuilder {
	b.useDepth = enabled
	return b
}

// SetTextureSlots sets the bind group indices UseMaterial binds the albedo
// and normal textures to. By default albedo takes the first group after the
// node's uniform sets and normal the one after it.
func (b *NodeBuilder) SetTextureSlots(albedo, normal uint32) *NodeBuilder {
	b.explicitSlots = true
	b.albedoSlot, b.normalSlot = albedo, normal
	return b
}

// textureSlots returns the groups UseMaterial binds to.
func (b *NodeBuilder) textureSlots() (albedo, normal uint32) {
	if b.explicitSlots {
		return b.albedoSlot, b.normalSlot
	}
	var base uint32
	if b.static != nil {
		base++
	}
	if b.dynamic != nil {
		base++
	}
	return base, base + 1
}

// AddUniformBuffer uploads u and appends the buffer to the node's static or
// dynamic uniform set. The returned buffer can be updated every frame.
// Buffers cannot be added once the node is built.
func (b *NodeBuilder) AddUniformBuffer(u Uniform, kind UniformKind) (*UniformBuffer, error) {
	if b.built {
		return nil, fmt.Errorf("node %q: %w", b.name, ErrNodeAlreadyBuilt)
	}
	set := &b.static
	if kind == UniformDynamic {
		set = &b.dynamic
	}
	label := fmt.Sprintf("%s_%s_%d", b.name, kind, b.setLen(*set))

	buf, err := NewUniformBuffer(b.device, b.queue, label, u)
	if err != nil {
		return nil, err
	}
	if *set == nil {
		s, err := NewUniformSet(b.device, fmt.Sprintf("%s_%s", b.name, kind), buf)
		if err != nil {
			buf.Destroy()
			return nil, err
		}
		*set = s
		return buf, nil
	}
	if err := (*set).Add(buf); err != nil {
		buf.Destroy()
		return nil, err
	}
	return buf, nil
}

func (b *NodeBuilder) setLen(s *UniformSet) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

// nodeBuild is the state of one Build call.
type nodeBuild struct {
	b         *NodeBuilder
	cache     *ResourceCache
	ops       []drawOp
	shader    string
	instanced bool
	instances []*InstanceBuffer
	identity  *InstanceBuffer
}

// Build resolves every command against cache, compiles the shader, and
// creates the node's pipeline for colorFormat. On failure everything the
// build created is released, including the builder's uniform sets.
func (b *NodeBuilder) Build(cache *ResourceCache, colorFormat gputypes.TextureFormat) (*Node, error) {
	if b.built {
		return nil, fmt.Errorf("node %q: %w", b.name, ErrNodeAlreadyBuilt)
	}
	b.built = true

	nb := &nodeBuild{b: b, cache: cache}
	node, err := nb.build(colorFormat)
	if err != nil {
		for _, ib := range nb.instances {
			ib.Destroy()
		}
		if nb.identity != nil {
			nb.identity.Destroy()
		}
		b.releaseUniforms()
		return nil, fmt.Errorf("build node %q: %w", b.name, err)
	}
	Logger().Debug("node built", "node", b.name, "ops", len(node.ops), "depth", node.useDepth)
	return node, nil
}

func (b *NodeBuilder) releaseUniforms() {
	if b.static != nil {
		b.static.Destroy()
		b.static = nil
	}
	if b.dynamic != nil {
		b.dynamic.Destroy()
		b.dynamic = nil
	}
}

func (nb *nodeBuild) build(colorFormat gputypes.TextureFormat) (*Node, error) {
	for _, cmd := range nb.b.commands {
		if err := nb.resolve(cmd); err != nil {
			return nil, err
		}
	}
	if nb.shader == "" {
		return nil, ErrNoShader
	}
	layouts, err := nb.layouts()
	if err != nil {
		return nil, err
	}
	if err := nb.buildIdentity(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(nb.shader)
	if err != nil {
		return nil, fmt.Errorf("read shader: %w", err)
	}
	device := nb.b.device
	module, err := gpu.CompileShader(device, nb.b.name+"_shader", string(source))
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", nb.shader, err)
	}

	pipeline, err := gpu.BuildPipeline(device, gpu.PipelineConfig{
		Label:            nb.b.name,
		Shader:           module,
		BindGroupLayouts: layouts,
		VertexBuffers:    nb.vertexBuffers(),
		ColorFormat:      colorFormat,
		UseDepth:         nb.b.useDepth,
	})
	if err != nil {
		device.DestroyShaderModule(module)
		return nil, err
	}

	return &Node{
		name:      nb.b.name,
		device:    device,
		pipeline:  pipeline,
		shader:    module,
		static:    nb.b.static,
		dynamic:   nb.b.dynamic,
		ops:       nb.ops,
		instances: nb.instances,
		identity:  nb.identity,
		useDepth:  nb.b.useDepth,
		clear:     defaultClearColor,
	}, nil
}

// vertexBuffers returns the vertex layout, followed by the instance layout
// once if any draw is instanced.
func (nb *nodeBuild) vertexBuffers() []gputypes.VertexBufferLayout {
	buffers := []gputypes.VertexBufferLayout{VertexLayout()}
	if nb.instanced {
		buffers = append(buffers, InstanceLayout())
	}
	return buffers
}

// buildIdentity creates the single identity instance plain DrawMesh ops
// bind in an instanced pipeline, so the instance slot is never unbound.
func (nb *nodeBuild) buildIdentity() error {
	if !nb.instanced || !slices.ContainsFunc(nb.ops, func(op drawOp) bool { return op.kind == opDrawMesh }) {
		return nil
	}
	ib, err := nb.cache.BuildInstanceBuffer([]Instance{NewTransform().Instance()})
	if err != nil {
		return fmt.Errorf("identity instance: %w", err)
	}
	nb.identity = ib
	return nil
}

func (nb *nodeBuild) resolve(cmd Command) error {
	switch c := cmd.(type) {
	case LoadShader:
		nb.shader = c.Path
	case LoadTexture:
		if _, err := nb.cache.LoadTexture(TextureHandle(c.Path), c.Path); err != nil {
			return err
		}
	case BindTexture:
		h := TextureHandle(c.Path)
		if _, err := nb.cache.LoadTexture(h, c.Path); err != nil {
			return err
		}
		nb.ops = append(nb.ops, drawOp{kind: opBindTexture, handle: h, slot: c.Slot})
	case UseMaterial:
		m, ok := nb.cache.Material(MaterialHandle(c.ID))
		if !ok {
			return fmt.Errorf("use material %q: %w", c.ID, ErrMaterialNotFound)
		}
		albedo, normal := nb.b.textureSlots()
		expanded, err := m.Commands(albedo, normal, nb.cache.Material)
		if err != nil {
			return err
		}
		for _, sub := range expanded {
			if err := nb.resolve(sub); err != nil {
				return err
			}
		}
	case DrawMesh:
		h := MeshHandle(c.Path)
		if _, err := nb.cache.LoadMesh(h, c.Path); err != nil {
			return err
		}
		nb.ops = append(nb.ops, drawOp{kind: opDrawMesh, handle: h})
	case DrawMeshInstanced:
		if len(c.Transforms) == 0 {
			return fmt.Errorf("draw %q: %w", c.Path, ErrNoTransforms)
		}
		h := MeshHandle(c.Path)
		mesh, err := nb.cache.LoadMesh(h, c.Path)
		if err != nil {
			return err
		}
		instances := make([]Instance, len(c.Transforms))
		for i, t := range c.Transforms {
			instances[i] = t.Instance()
		}
		ib, err := nb.cache.BuildInstanceBuffer(instances)
		if err != nil {
			return err
		}
		nb.instances = append(nb.instances, ib)
		nb.instanced = true
		nb.ops = append(nb.ops, drawOp{kind: opDrawInstanced, handle: h, mesh: mesh.WithInstances(ib)})
	default:
		return fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
	}
	return nil
}

// layouts returns the pipeline's bind group layouts: the static set, the
// dynamic set, then one texture layout per distinct BindTexture slot in
// the order the slots first appear. Each new slot must be the index its
// layout lands at, or the group would be bound over another one.
func (nb *nodeBuild) layouts() ([]hal.BindGroupLayout, error) {
	var layouts []hal.BindGroupLayout
	if nb.b.static != nil {
		layouts = append(layouts, nb.b.static.Layout())
	}
	if nb.b.dynamic != nil {
		layouts = append(layouts, nb.b.dynamic.Layout())
	}
	seen := make(map[uint32]bool)
	for _, op := range nb.ops {
		if op.kind != opBindTexture || seen[op.slot] {
			continue
		}
		seen[op.slot] = true
		t, ok := nb.cache.Texture(op.handle)
		if !ok {
			continue
		}
		if next := uint32(len(layouts)); op.slot != next { //nolint:gosec // group counts are small
			return nil, fmt.Errorf("%s at group %d, next group is %d: %w", op.handle, op.slot, next, ErrTextureSlotMismatch)
		}
		layouts = append(layouts, t.Layout())
	}
	return layouts, nil
}

// Node is a built render node: one pipeline and a resolved op list that is
// replayed into a render pass every frame.
type Node struct {
	name      string
	device    hal.Device
	pipeline  *gpu.Pipeline
	shader    hal.ShaderModule
	static    *UniformSet
	dynamic   *UniformSet
	ops       []drawOp
	instances []*InstanceBuffer
	identity  *InstanceBuffer // bound for plain draws in instanced pipelines
	useDepth  bool
	clear     gputypes.Color
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// UsesDepth reports whether the node renders with depth testing.
func (n *Node) UsesDepth() bool { return n.useDepth }

// StaticUniforms returns the static uniform set, or nil.
func (n *Node) StaticUniforms() *UniformSet { return n.static }

// DynamicUniforms returns the dynamic uniform set, or nil.
func (n *Node) DynamicUniforms() *UniformSet { return n.dynamic }

// InstanceBuffers returns the instance buffers of the node's instanced
// draws, in command order.
func (n *Node) InstanceBuffers() []*InstanceBuffer { return n.instances }

// dynamicSlot is the bind group index of the dynamic set.
func (n *Node) dynamicSlot() uint32 {
	if n.static != nil {
		return 1
	}
	return 0
}

// Execute records the node into one render pass on encoder. Node 0 clears
// the color and depth attachments; later nodes load them.
func (n *Node) Execute(index int, view hal.TextureView, cache *ResourceCache, encoder PassEncoder) error {
	var depthView hal.TextureView
	if n.useDepth {
		depth, err := cache.DepthTexture()
		if err != nil {
			return fmt.Errorf("node %q: %w", n.name, err)
		}
		depthView = depth.View()
	}

	rp := encoder.BeginRenderPass(n.passDescriptor(index, view, depthView))
	n.record(rp, cache)
	rp.End()
	return nil
}

func (n *Node) passDescriptor(index int, view, depthView hal.TextureView) *hal.RenderPassDescriptor {
	load := gputypes.LoadOpLoad
	if index == 0 {
		load = gputypes.LoadOpClear
	}
	desc := &hal.RenderPassDescriptor{
		Label: n.name + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: n.clear,
		}},
	}
	if depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     load,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	return desc
}

func (n *Node) record(pass drawRecorder, cache *ResourceCache) {
	pass.SetPipeline(n.pipeline.Raw())
	if n.static != nil {
		n.static.Bind(0, pass)
	}
	if n.dynamic != nil {
		n.dynamic.Bind(n.dynamicSlot(), pass)
	}

	for _, op := range n.ops {
		switch op.kind {
		case opBindTexture:
			t, ok := cache.Texture(op.handle)
			if !ok {
				n.skip(op)
				continue
			}
			t.Bind(op.slot, pass)
		case opDrawMesh:
			m, ok := cache.Mesh(op.handle)
			if !ok {
				n.skip(op)
				continue
			}
			if n.identity != nil {
				pass.SetVertexBuffer(instanceSlot, n.identity.buffer, 0)
			}
			m.draw(pass)
		case opDrawInstanced:
			if _, ok := cache.Mesh(op.handle); !ok {
				n.skip(op)
				continue
			}
			op.mesh.draw(pass)
		}
	}
}

func (n *Node) skip(op drawOp) {
	Logger().Debug("skipping unresolved op", "node", n.name, "op", op.kind.String(), "handle", op.handle.String())
}

// Destroy releases the pipeline, shader module, uniform sets, and instance
// buffers. Cached meshes and textures are left to the ResourceCache.
func (n *Node) Destroy() {
	if n.pipeline != nil {
		n.pipeline.Destroy()
		n.pipeline = nil
	}
	if n.shader != nil {
		n.device.DestroyShaderModule(n.shader)
		n.shader = nil
	}
	if n.static != nil {
		n.static.Destroy()
		n.static = nil
	}
	if n.dynamic != nil {
		n.dynamic.Destroy()
		n.dynamic = nil
	}
	for _, ib := range n.instances {
		ib.Destroy()
	}
	n.instances = nil
	if n.identity != nil {
		n.identity.Destroy()
		n.identity = nil
	}
}
