package rendergraph

import (
	"time"

	"github.com/gogpu/gputypes"
)

// DefaultColorFormat is the surface format used when neither an option nor
// a device provider names one.
const DefaultColorFormat = gputypes.TextureFormatBGRA8UnormSrgb

// DefaultFrameTimeout bounds the wait on the previous frame's submission.
const DefaultFrameTimeout = 2 * time.Second

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	r, err := rendergraph.NewRenderer(device, queue, surface, 800, 600,
//	    rendergraph.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}),
//	    rendergraph.WithFrameTimeout(time.Second),
//	)
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	clearColor   gputypes.Color
	colorFormat  gputypes.TextureFormat
	frameTimeout time.Duration
	textureSlots bool // set by WithTextureSlots
	albedoSlot   uint32
	normalSlot   uint32
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		clearColor:   defaultClearColor,
		colorFormat:  DefaultColorFormat,
		frameTimeout: DefaultFrameTimeout,
	}
}

// WithClearColor sets the color the first node clears the frame to.
func WithClearColor(c gputypes.Color) RendererOption {
	return func(o *rendererOptions) {
		o.clearColor = c
	}
}

// WithColorFormat sets the surface color format every pipeline targets.
// Undefined keeps the default.
func WithColorFormat(f gputypes.TextureFormat) RendererOption {
	return func(o *rendererOptions) {
		if f != gputypes.TextureFormatUndefined {
			o.colorFormat = f
		}
	}
}

// WithFrameTimeout sets how long Render waits for the previous frame.
// Non-positive durations keep the default.
func WithFrameTimeout(d time.Duration) RendererOption {
	return func(o *rendererOptions) {
		if d > 0 {
			o.frameTimeout = d
		}
	}
}

// WithTextureSlots sets the bind group indices UseMaterial binds albedo and
// normal textures to, for every node created by Renderer.NewNode. Without
// it each node places them right after its own uniform sets.
func WithTextureSlots(albedo, normal uint32) RendererOption {
	return func(o *rendererOptions) {
		o.textureSlots = true
		o.albedoSlot = albedo
		o.normalSlot = normal
	}
}
