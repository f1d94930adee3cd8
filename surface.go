package rendergraph

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceConfig is the size and color format of the render target. It is
// shared by the Renderer, its Surface, and the ResourceCache, which polls it
// to keep the depth attachment in step with the surface.
type SurfaceConfig struct {
	mu     sync.RWMutex
	width  uint32
	height uint32
	format gputypes.TextureFormat
}

// SurfaceState is a point-in-time copy of a SurfaceConfig.
type SurfaceState struct {
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
}

// NewSurfaceConfig returns a config of the given size and format.
func NewSurfaceConfig(width, height uint32, format gputypes.TextureFormat) (*SurfaceConfig, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("surface %dx%d: %w", width, height, ErrInvalidSurfaceSize)
	}
	return &SurfaceConfig{width: width, height: height, format: format}, nil
}

// Size returns the surface dimensions.
func (c *SurfaceConfig) Size() (width, height uint32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

// Format returns the surface color format.
func (c *SurfaceConfig) Format() gputypes.TextureFormat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.format
}

// Resize changes the surface dimensions.
func (c *SurfaceConfig) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidSurfaceSize)
	}
	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
	return nil
}

// Snapshot returns a consistent copy of every field.
func (c *SurfaceConfig) Snapshot() SurfaceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SurfaceState{Width: c.width, Height: c.height, Format: c.format}
}

// Frame is an acquired surface image.
type Frame interface {
	View() hal.TextureView
}

// Surface is the presentation target of a Renderer.
//
// Acquire reports recoverable conditions with ErrFrameTimeout,
// ErrSurfaceOutdated, ErrSurfaceLost, or ErrOutOfMemory (wrapped or not).
// The Renderer retries a timeout once, and reconfigures then retries once
// for the other three.
type Surface interface {
	Configure(device hal.Device, state SurfaceState) error
	Acquire() (Frame, error)
	Present(queue hal.Queue, frame Frame) error
}
