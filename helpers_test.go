package rendergraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rendergraph/internal/image"
)

// testShader has the default entry points and the standard vertex layout.
const testShader = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) tex_coords: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
}

@vertex
fn vert_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = vec4<f32>(in.position, 1.0);
    out.tex_coords = in.tex_coords;
    return out;
}

@fragment
fn frag_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.tex_coords, 0.0, 1.0);
}
`

const triangleOBJ = `o triangle
v -0.5 -0.5 0
v 0.5 -0.5 0
v 0 0.5 0
vt 0 0
vt 1 0
vt 0.5 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

// twoObjectOBJ has a triangle and a quad, one submesh each.
const twoObjectOBJ = `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o quad
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 4 5 6 7
`

// createNoopDevice opens a device on the noop backend.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no adapters available")
	}

	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}

	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// writeFixture writes content to name inside dir and returns the path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// writeTexture writes a w x h opaque red PNG inside dir and returns the path.
func writeTexture(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+3] = 255, 255
	}
	path := filepath.Join(dir, name)
	img := &image.RGBA{Width: w, Height: h, Pix: pix}
	if err := img.SavePNG(path); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// testEnv is a noop device with a cache and fixture files.
type testEnv struct {
	device hal.Device
	queue  hal.Queue
	config *SurfaceConfig
	cache  *ResourceCache

	dir      string
	shader   string
	triangle string
	twoObj   string
	texture  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)

	config, err := NewSurfaceConfig(64, 48, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		cleanup()
		t.Fatalf("NewSurfaceConfig: %v", err)
	}
	cache := NewResourceCache(device, queue, config)
	t.Cleanup(func() {
		cache.Destroy()
		cleanup()
	})

	dir := t.TempDir()
	return &testEnv{
		device:   device,
		queue:    queue,
		config:   config,
		cache:    cache,
		dir:      dir,
		shader:   writeFixture(t, dir, "shader.wgsl", testShader),
		triangle: writeFixture(t, dir, "triangle.obj", triangleOBJ),
		twoObj:   writeFixture(t, dir, "two.obj", twoObjectOBJ),
		texture:  writeTexture(t, dir, "albedo.png", 2, 2),
	}
}

func (e *testEnv) newNode(name string) *NodeBuilder {
	return NewNodeBuilder(name, e.device, e.queue)
}

type drawCall struct {
	indexCount    uint32
	instanceCount uint32
}

// fakeRecorder records the calls a node makes into a render pass.
type fakeRecorder struct {
	pipelines     int
	groupSlots    []uint32
	vertexSlots   []uint32
	vertexBuffers []hal.Buffer
	indexBuffers  []gputypes.IndexFormat
	draws         []drawCall
}

func (f *fakeRecorder) SetPipeline(hal.RenderPipeline) { f.pipelines++ }

func (f *fakeRecorder) SetBindGroup(index uint32, _ hal.BindGroup, _ []uint32) {
	f.groupSlots = append(f.groupSlots, index)
}

func (f *fakeRecorder) SetVertexBuffer(slot uint32, buf hal.Buffer, _ uint64) {
	f.vertexSlots = append(f.vertexSlots, slot)
	f.vertexBuffers = append(f.vertexBuffers, buf)
}

// instanceBuffers returns the buffers bound at the instance slot, in order.
func (f *fakeRecorder) instanceBuffers() []hal.Buffer {
	var out []hal.Buffer
	for i, slot := range f.vertexSlots {
		if slot == instanceSlot {
			out = append(out, f.vertexBuffers[i])
		}
	}
	return out
}

func (f *fakeRecorder) SetIndexBuffer(_ hal.Buffer, format gputypes.IndexFormat, _ uint64) {
	f.indexBuffers = append(f.indexBuffers, format)
}

func (f *fakeRecorder) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	f.draws = append(f.draws, drawCall{indexCount: indexCount, instanceCount: instanceCount})
}

// scriptedSurface is an OffscreenSurface whose Acquire fails with the
// queued errors before succeeding.
type scriptedSurface struct {
	*OffscreenSurface
	errs       []error
	acquires   int
	configures int
}

func newScriptedSurface(errs ...error) *scriptedSurface {
	return &scriptedSurface{OffscreenSurface: NewOffscreenSurface(), errs: errs}
}

func (s *scriptedSurface) Configure(device hal.Device, state SurfaceState) error {
	s.configures++
	return s.OffscreenSurface.Configure(device, state)
}

func (s *scriptedSurface) Acquire() (Frame, error) {
	s.acquires++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.OffscreenSurface.Acquire()
}
