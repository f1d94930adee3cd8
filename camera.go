package rendergraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// maxPitch keeps the camera away from the poles where look-at degenerates.
const maxPitch = 89.9

// depthCorrection maps OpenGL clip depth [-1, 1] to WebGPU's [0, 1].
var depthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is a perspective fly camera. Yaw and Pitch are degrees; yaw 0 looks
// down +X and yaw -90 looks down -Z.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FOV      float32 // vertical field of view in degrees
	Aspect   float32
	Near     float32
	Far      float32
}

// NewCamera returns a camera at position looking down -Z with a 45 degree
// field of view and clip planes at 0.1 and 100.
func NewCamera(position mgl32.Vec3, aspect float32) *Camera {
	return &Camera{
		Position: position,
		Yaw:      -90,
		FOV:      45,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// basis returns the forward, right and up vectors.
func (c *Camera) basis() (forward, right, up mgl32.Vec3) {
	forward = c.Forward()
	right = forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// View returns the right-handed look-at matrix.
func (c *Camera) View() mgl32.Mat4 {
	forward, _, up := c.basis()
	return mgl32.LookAtV(c.Position, c.Position.Add(forward), up)
}

// Projection returns the perspective matrix in WebGPU clip space.
func (c *Camera) Projection() mgl32.Mat4 {
	return depthCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far))
}

// ViewProj returns Projection * View.
func (c *Camera) ViewProj() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Move offsets the position in camera space: X is right, Y is up and Z is
// forward.
func (c *Camera) Move(delta mgl32.Vec3) {
	forward, right, up := c.basis()
	c.Position = c.Position.
		Add(right.Mul(delta[0])).
		Add(up.Mul(delta[1])).
		Add(forward.Mul(delta[2]))
}

// Rotate adds to yaw and pitch. Pitch is clamped to ±89.9 degrees.
func (c *Camera) Rotate(dyaw, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, -maxPitch, maxPitch)
}

// Resize updates the aspect ratio. Zero sizes are ignored.
func (c *Camera) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// UniformBytes returns the view-projection matrix as 64 little-endian bytes.
func (c *Camera) UniformBytes() []byte {
	m := c.ViewProj()
	return gpu.Float32Bytes(m[:]...)
}
