package rendergraph

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
	"github.com/gogpu/rendergraph/internal/image"
	"github.com/gogpu/rendergraph/internal/obj"
)

// CacheStats counts the resources held by a ResourceCache.
type CacheStats struct {
	Meshes    int
	Textures  int
	Materials int
	Depth     bool
}

// ResourceCache owns every mesh, texture, and material, keyed by handle,
// plus the depth attachment shared by all nodes. Loads are idempotent: the
// first load of a handle uploads, later loads return the same object.
//
// ResourceCache is safe for concurrent use.
type ResourceCache struct {
	device hal.Device
	queue  hal.Queue
	config *SurfaceConfig

	mu        sync.Mutex
	meshes    map[ResourceHandle]*Mesh
	textures  map[ResourceHandle]*Texture
	materials map[ResourceHandle]*Material
	depth     *DepthTexture
	instances int
}

// NewResourceCache returns an empty cache. config drives the depth size.
func NewResourceCache(device hal.Device, queue hal.Queue, config *SurfaceConfig) *ResourceCache {
	return &ResourceCache{
		device:    device,
		queue:     queue,
		config:    config,
		meshes:    make(map[ResourceHandle]*Mesh),
		textures:  make(map[ResourceHandle]*Texture),
		materials: make(map[ResourceHandle]*Material),
	}
}

// LoadMesh returns the mesh for h, loading the OBJ file at path on first use.
// Each object or group in the file becomes one submesh.
func (c *ResourceCache) LoadMesh(h ResourceHandle, path string) (*Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.meshes[h]; ok {
		return m, nil
	}

	objects, err := obj.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load mesh %q: %w", path, err)
	}
	m := &Mesh{device: c.device}
	for _, o := range objects {
		sm, err := newSubmesh(c.device, c.queue, h.ID+"/"+o.Name, convertVertices(o.Vertices), o.Indices)
		if err != nil {
			m.destroy()
			return nil, fmt.Errorf("load mesh %q: %w", path, err)
		}
		m.submeshes = append(m.submeshes, sm)
	}

	c.meshes[h] = m
	Logger().Debug("mesh loaded", "handle", h.String(), "submeshes", len(m.submeshes))
	return m, nil
}

// AddMesh uploads a single-submesh mesh from memory. If h is already cached
// the cached mesh is returned and nothing is uploaded.
func (c *ResourceCache) AddMesh(h ResourceHandle, vertices []Vertex, indices []uint32) (*Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.meshes[h]; ok {
		return m, nil
	}
	sm, err := newSubmesh(c.device, c.queue, h.ID, vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("add mesh %s: %w", h, err)
	}
	m := &Mesh{device: c.device, submeshes: []*Submesh{sm}}
	c.meshes[h] = m
	return m, nil
}

func convertVertices(src []obj.Vertex) []Vertex {
	out := make([]Vertex, len(src))
	for i, v := range src {
		out[i] = Vertex{Position: v.Position, Normal: v.Normal, TexCoords: v.TexCoord}
	}
	return out
}

// LoadTexture returns the texture for h, decoding the image at path on first use.
func (c *ResourceCache) LoadTexture(h ResourceHandle, path string) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.textures[h]; ok {
		return t, nil
	}

	img, err := image.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %q: %w", path, err)
	}
	t, err := newTexture(c.device, c.queue, h.ID, uint32(img.Width), uint32(img.Height), img.Pix) //nolint:gosec // decoded sizes are positive
	if err != nil {
		return nil, fmt.Errorf("load texture %q: %w", path, err)
	}

	c.textures[h] = t
	Logger().Debug("texture loaded", "handle", h.String(), "width", img.Width, "height", img.Height)
	return t, nil
}

// AddTexture uploads tightly packed RGBA8 pixels. If h is already cached the
// cached texture is returned.
func (c *ResourceCache) AddTexture(h ResourceHandle, width, height uint32, rgba []byte) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.textures[h]; ok {
		return t, nil
	}
	t, err := newTexture(c.device, c.queue, h.ID, width, height, rgba)
	if err != nil {
		return nil, fmt.Errorf("add texture %s: %w", h, err)
	}
	c.textures[h] = t
	return t, nil
}

// AddMaterial registers m under h, replacing any previous material.
func (c *ResourceCache) AddMaterial(h ResourceHandle, m *Material) {
	c.mu.Lock()
	c.materials[h] = m
	c.mu.Unlock()
}

// Material returns the material registered under h.
func (c *ResourceCache) Material(h ResourceHandle) (*Material, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.materials[h]
	return m, ok
}

// Mesh returns the cached mesh for h. It never loads.
func (c *ResourceCache) Mesh(h ResourceHandle) (*Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.meshes[h]
	return m, ok
}

// Texture returns the cached texture for h. It never loads.
func (c *ResourceCache) Texture(h ResourceHandle) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.textures[h]
	return t, ok
}

// DepthTexture returns the depth attachment, recreating it when the surface
// size changed since it was made.
func (c *ResourceCache) DepthTexture() (*DepthTexture, error) {
	width, height := c.config.Size()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.depth != nil {
		if w, h := c.depth.Size(); w == width && h == height {
			return c.depth, nil
		}
		c.depth.target.Destroy(c.device)
		c.depth = nil
	}

	target, err := gpu.CreateDepthTarget(c.device, "depth", width, height)
	if err != nil {
		return nil, fmt.Errorf("depth texture: %w", err)
	}
	c.depth = &DepthTexture{target: target}
	Logger().Info("depth texture created", "width", width, "height", height)
	return c.depth, nil
}

// BuildInstanceBuffer uploads instances to a new buffer. Instance buffers are
// owned by the caller and never cached.
func (c *ResourceCache) BuildInstanceBuffer(instances []Instance) (*InstanceBuffer, error) {
	c.mu.Lock()
	c.instances++
	label := fmt.Sprintf("instances_%d", c.instances)
	c.mu.Unlock()

	return newInstanceBuffer(c.device, c.queue, label, instances)
}

// Stats returns resource counts.
func (c *ResourceCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Meshes:    len(c.meshes),
		Textures:  len(c.textures),
		Materials: len(c.materials),
		Depth:     c.depth != nil,
	}
}

// Destroy releases every GPU resource and empties the cache.
func (c *ResourceCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, m := range c.meshes {
		m.destroy()
		delete(c.meshes, h)
	}
	for h, t := range c.textures {
		t.Destroy()
		delete(c.textures, h)
	}
	clear(c.materials)
	if c.depth != nil {
		c.depth.target.Destroy(c.device)
		c.depth = nil
	}
}
