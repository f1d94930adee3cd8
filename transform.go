package rendergraph

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// Transform places an object in the world. Rotation holds Euler angles in
// radians, applied X then Y then Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns a transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns the column-major model matrix translate * rotate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	rotation := mgl32.HomogRotate3DX(t.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Instance returns the per-instance payload for instanced draws.
func (t Transform) Instance() Instance {
	return Instance{Model: t.Matrix()}
}

// UniformBytes returns the model matrix as 64 little-endian bytes.
func (t Transform) UniformBytes() []byte {
	m := t.Matrix()
	return gpu.Float32Bytes(m[:]...)
}
