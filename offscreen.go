package rendergraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// errNotConfigured is returned by OffscreenSurface before Configure.
var errNotConfigured = errors.New("rendergraph: offscreen surface not configured")

// OffscreenSurface is a Surface backed by a color texture that can be read
// back to host memory. It serves headless rendering and tests.
type OffscreenSurface struct {
	device    hal.Device
	target    *gpu.Target
	presented uint64
}

// NewOffscreenSurface returns an unconfigured offscreen surface.
func NewOffscreenSurface() *OffscreenSurface {
	return &OffscreenSurface{}
}

type offscreenFrame struct {
	view hal.TextureView
}

func (f offscreenFrame) View() hal.TextureView { return f.view }

// Configure (re)creates the color texture when the size or format changed.
func (s *OffscreenSurface) Configure(device hal.Device, state SurfaceState) error {
	if t := s.target; t != nil &&
		t.Width == state.Width && t.Height == state.Height && t.Format == state.Format {
		return nil
	}
	s.Destroy()

	target, err := gpu.CreateColorTarget(device, "offscreen_color", state.Width, state.Height, state.Format)
	if err != nil {
		return fmt.Errorf("configure offscreen surface: %w", err)
	}
	s.device = device
	s.target = target
	return nil
}

// Acquire returns the color texture as the next frame.
func (s *OffscreenSurface) Acquire() (Frame, error) {
	if s.target == nil {
		return nil, errNotConfigured
	}
	return offscreenFrame{view: s.target.View}, nil
}

// Present counts the frame. The image stays in the texture until the next
// frame overwrites it.
func (s *OffscreenSurface) Present(_ hal.Queue, _ Frame) error {
	s.presented++
	return nil
}

// Presented returns the number of presented frames.
func (s *OffscreenSurface) Presented() uint64 { return s.presented }

// Size returns the texture dimensions, or zero before Configure.
func (s *OffscreenSurface) Size() (width, height uint32) {
	if s.target == nil {
		return 0, 0
	}
	return s.target.Width, s.target.Height
}

// ReadPixels copies the last frame to host memory as tightly packed RGBA8
// rows. BGRA surfaces are swizzled to RGBA.
func (s *OffscreenSurface) ReadPixels(queue hal.Queue) ([]byte, error) {
	if s.target == nil {
		return nil, errNotConfigured
	}
	return gpu.ReadTarget(s.device, queue, s.target)
}

// Destroy releases the color texture. Safe to call twice.
func (s *OffscreenSurface) Destroy() {
	if s.target != nil {
		s.target.Destroy(s.device)
		s.target = nil
	}
}
