package rendergraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// Renderer owns the device, queue, surface, resource cache, and graph, and
// turns them into frames. Typical use:
//
//	r, err := rendergraph.NewRenderer(device, queue, surface, 800, 600)
//	node := r.NewNode("triangle").AddCommand(rendergraph.LoadShader{Path: "tri.wgsl"})
//	r.AddRenderNode(node)
//	if err := r.Initialize(); err != nil { ... }
//	for running {
//	    if err := r.Render(); err != nil { ... }
//	}
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	device  hal.Device
	queue   hal.Queue
	surface Surface
	config  *SurfaceConfig
	cache   *ResourceCache
	graph   *Graph
	opts    rendererOptions

	submitted   uint64 // submission index of the last frame
	pending     hal.CommandBuffer
	initialized bool
}

// NewRenderer configures surface at width x height and returns a renderer
// with an empty graph.
func NewRenderer(device hal.Device, queue hal.Queue, surface Surface, width, height uint32, opts ...RendererOption) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	config, err := NewSurfaceConfig(width, height, o.colorFormat)
	if err != nil {
		return nil, err
	}
	if err := surface.Configure(device, config.Snapshot()); err != nil {
		return nil, fmt.Errorf("configure surface: %w", err)
	}
	graph := NewGraph()
	graph.SetClearColor(o.clearColor)
	Logger().Info("renderer created", "width", width, "height", height, "format", o.colorFormat)
	return &Renderer{
		device:  device,
		queue:   queue,
		surface: surface,
		config:  config,
		cache:   NewResourceCache(device, queue, config),
		graph:   graph,
		opts:    o,
	}, nil
}

// NewRendererFromProvider creates a renderer on a device shared by another
// component. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. The provider's surface
// format is used unless WithColorFormat overrides it.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, surface Surface, width, height uint32, opts ...RendererOption) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("rendergraph: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("rendergraph: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("rendergraph: provider HalQueue is not hal.Queue")
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = DefaultColorFormat
	}
	opts = append([]RendererOption{WithColorFormat(format)}, opts...)
	return NewRenderer(device, queue, surface, width, height, opts...)
}

// Device returns the HAL device.
func (r *Renderer) Device() hal.Device { return r.device }

// Queue returns the HAL queue.
func (r *Renderer) Queue() hal.Queue { return r.queue }

// Cache returns the resource cache.
func (r *Renderer) Cache() *ResourceCache { return r.cache }

// Config returns the shared surface configuration.
func (r *Renderer) Config() *SurfaceConfig { return r.config }

// Graph returns the render graph.
func (r *Renderer) Graph() *Graph { return r.graph }

// NewNode returns a node builder bound to the renderer's device.
func (r *Renderer) NewNode(name string) *NodeBuilder {
	b := NewNodeBuilder(name, r.device, r.queue)
	if r.opts.textureSlots {
		b.SetTextureSlots(r.opts.albedoSlot, r.opts.normalSlot)
	}
	return b
}

// AddRenderNode appends b to the graph. Nodes cannot be added after
// Initialize until Reset is called.
func (r *Renderer) AddRenderNode(b *NodeBuilder) error {
	if r.graph.Built() {
		return fmt.Errorf("add node %q: %w", b.Name(), ErrGraphAlreadyBuilt)
	}
	r.graph.AddNode(b)
	return nil
}

// Initialize builds the graph against the cache and surface format.
func (r *Renderer) Initialize() error {
	if err := r.graph.Build(r.cache, r.config.Format()); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

// Resize reconfigures the surface. The depth attachment follows on the
// next frame. Zero sizes, as reported for minimized windows, are ignored.
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		Logger().Warn("ignoring resize to zero size", "width", width, "height", height)
		return nil
	}
	if err := r.config.Resize(width, height); err != nil {
		return err
	}
	if err := r.surface.Configure(r.device, r.config.Snapshot()); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	Logger().Info("renderer resized", "width", width, "height", height)
	return nil
}

// Render draws one frame: it waits for the previous frame, acquires a
// surface frame, records the graph, submits, and presents.
func (r *Renderer) Render() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if err := r.waitPrevious(); err != nil {
		return err
	}

	frame, err := r.acquire()
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	if err := r.graph.Execute(frame.View(), r.cache, encoder); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("record frame: %w", err)
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}

	index, err := gpu.Submit(r.queue, cmdBuf)
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		return err
	}
	r.submitted = index
	r.pending = cmdBuf

	if err := r.surface.Present(r.queue, frame); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// waitPrevious blocks until the last submitted frame completes and frees
// its command buffer.
func (r *Renderer) waitPrevious() error {
	if r.pending == nil {
		return nil
	}
	if !gpu.WaitSubmission(r.queue, r.submitted, r.opts.frameTimeout) {
		return fmt.Errorf("wait for submission %d: %w", r.submitted, ErrGPUTimeout)
	}
	r.device.FreeCommandBuffer(r.pending)
	r.pending = nil
	return nil
}

// acquire gets a frame, retrying once. A timeout is retried as is; an
// outdated or lost surface, or an out-of-memory report, is retried after
// reconfiguring the surface.
func (r *Renderer) acquire() (Frame, error) {
	frame, err := r.surface.Acquire()
	if err == nil {
		return frame, nil
	}

	switch {
	case errors.Is(err, ErrFrameTimeout):
		Logger().Warn("frame acquire timed out, retrying")
	case errors.Is(err, ErrSurfaceOutdated), errors.Is(err, ErrSurfaceLost), errors.Is(err, ErrOutOfMemory):
		Logger().Warn("reconfiguring surface", "err", err)
		if cerr := r.surface.Configure(r.device, r.config.Snapshot()); cerr != nil {
			return nil, fmt.Errorf("reconfigure surface: %w", cerr)
		}
	default:
		return nil, fmt.Errorf("acquire frame: %w", err)
	}

	frame, err = r.surface.Acquire()
	if err != nil {
		return nil, fmt.Errorf("acquire frame after retry: %w", err)
	}
	return frame, nil
}

// Reset destroys the graph and starts a new empty one. Builders that were
// added but never built release their uniform buffers. Cached resources
// are kept, so rebuilding the same nodes does not reload files.
func (r *Renderer) Reset() error {
	if err := r.waitPrevious(); err != nil {
		return err
	}
	r.graph.Destroy()
	r.graph = NewGraph()
	r.graph.SetClearColor(r.opts.clearColor)
	r.initialized = false
	return nil
}

// Destroy waits for the last frame and releases the graph and the cache.
// A surface with a Destroy method is destroyed too.
func (r *Renderer) Destroy() {
	if err := r.waitPrevious(); err != nil {
		Logger().Warn("destroying renderer with frame in flight", "err", err)
	}
	if r.pending != nil {
		r.device.FreeCommandBuffer(r.pending)
		r.pending = nil
	}
	r.graph.Destroy()
	r.cache.Destroy()
	if d, ok := r.surface.(interface{ Destroy() }); ok {
		d.Destroy()
	}
	r.initialized = false
}
