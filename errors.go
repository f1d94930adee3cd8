package rendergraph

import "errors"

// Build errors. These abort the node or graph build that hit them.
var (
	// ErrNoShader is returned when a node has no LoadShader command.
	ErrNoShader = errors.New("rendergraph: node has no shader")

	// ErrNodeAlreadyBuilt is returned when Build is called twice on a NodeBuilder.
	ErrNodeAlreadyBuilt = errors.New("rendergraph: node already built")

	// ErrGraphAlreadyBuilt is returned when Build is called twice on a Graph.
	ErrGraphAlreadyBuilt = errors.New("rendergraph: graph already built")

	// ErrMaterialNotFound is returned when UseMaterial names an unknown material.
	ErrMaterialNotFound = errors.New("rendergraph: material not found")

	// ErrMaterialCycle is returned when base materials refer back to themselves.
	ErrMaterialCycle = errors.New("rendergraph: material base cycle")

	// ErrNoTransforms is returned for a DrawMeshInstanced command without transforms.
	ErrNoTransforms = errors.New("rendergraph: instanced draw has no transforms")

	// ErrUnknownCommand is returned for Command implementations this package does not define.
	ErrUnknownCommand = errors.New("rendergraph: unknown command")

	// ErrTextureSlotMismatch is returned when a BindTexture slot is not the
	// bind group index its texture layout lands at in the pipeline layout.
	ErrTextureSlotMismatch = errors.New("rendergraph: texture slot does not match pipeline layout")
)

// Resource errors.
var (
	// ErrUniformSizeMismatch is returned when a uniform update changes the
	// payload size. Uniform buffers never resize.
	ErrUniformSizeMismatch = errors.New("rendergraph: uniform payload size mismatch")

	// ErrEmptyUniform is returned for zero-length uniform payloads.
	ErrEmptyUniform = errors.New("rendergraph: uniform payload is empty")

	// ErrEmptyMesh is returned when a mesh would have no geometry.
	ErrEmptyMesh = errors.New("rendergraph: mesh has no geometry")

	// ErrInstanceRange is returned for instance indices outside the buffer.
	ErrInstanceRange = errors.New("rendergraph: instance index out of range")

	// ErrInvalidSurfaceSize is returned for zero surface dimensions.
	ErrInvalidSurfaceSize = errors.New("rendergraph: invalid surface size")
)

// Frame errors returned by Surface.Acquire. Renderer retries each of them
// once: a timeout by acquiring again, the others after reconfiguring.
var (
	ErrFrameTimeout    = errors.New("rendergraph: frame acquire timed out")
	ErrSurfaceOutdated = errors.New("rendergraph: surface outdated")
	ErrSurfaceLost     = errors.New("rendergraph: surface lost")
	ErrOutOfMemory     = errors.New("rendergraph: out of memory")
)

// ErrGPUTimeout is returned when the previous frame's submission does not
// complete within the frame timeout.
var ErrGPUTimeout = errors.New("rendergraph: GPU work did not complete in time")

// ErrNotInitialized is returned by Render before Initialize succeeded.
var ErrNotInitialized = errors.New("rendergraph: renderer not initialized")
