package rendergraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// vec3Near compares component-wise with an absolute tolerance. mgl32's
// ApproxEqualThreshold is relative and never matches a tiny value against 0.
func vec3Near(a, b mgl32.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			return false
		}
	}
	return true
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 5}, 2)
	if !vec3Near(c.Forward(), mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("Forward() = %v, want -Z", c.Forward())
	}
	if c.Near != 0.1 || c.Far != 100 || c.FOV != 45 {
		t.Errorf("defaults = near %v far %v fov %v", c.Near, c.Far, c.FOV)
	}
	if len(c.UniformBytes()) != 64 {
		t.Errorf("len(UniformBytes()) = %d, want 64", len(c.UniformBytes()))
	}
}

func TestCameraDepthRange(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 1)
	vp := c.ViewProj()

	tests := []struct {
		name  string
		dist  float32
		wantZ float32
	}{
		{"near plane", c.Near, 0},
		{"far plane", c.Far, 1},
	}
	for _, tt := range tests {
		clip := vp.Mul4x1(mgl32.Vec4{0, 0, -tt.dist, 1})
		if z := clip.Z() / clip.W(); math.Abs(float64(z-tt.wantZ)) > 1e-4 {
			t.Errorf("%s: ndc z = %v, want %v", tt.name, z, tt.wantZ)
		}
	}
}

func TestCameraPitchClamp(t *testing.T) {
	tests := []struct {
		dpitch float32
		want   float32
	}{
		{45, 45},
		{120, maxPitch},
		{-400, -maxPitch},
	}
	for _, tt := range tests {
		c := NewCamera(mgl32.Vec3{}, 1)
		c.Rotate(10, tt.dpitch)
		if c.Pitch != tt.want {
			t.Errorf("Rotate(10, %v) pitch = %v, want %v", tt.dpitch, c.Pitch, tt.want)
		}
		if c.Yaw != -80 {
			t.Errorf("Rotate(10, %v) yaw = %v, want -80", tt.dpitch, c.Yaw)
		}
	}
}

func TestCameraMove(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 1)
	c.Move(mgl32.Vec3{1, 0, 2})
	// Forward is -Z and right is +X.
	if want := (mgl32.Vec3{1, 0, -2}); !vec3Near(c.Position, want, 1e-5) {
		t.Errorf("Position = %v, want %v", c.Position, want)
	}
}

func TestCameraResize(t *testing.T) {
	c := NewCamera(mgl32.Vec3{}, 1)
	c.Resize(800, 0)
	if c.Aspect != 1 {
		t.Errorf("zero-height resize changed aspect to %v", c.Aspect)
	}
	c.Resize(800, 400)
	if c.Aspect != 2 {
		t.Errorf("Aspect = %v, want 2", c.Aspect)
	}
}
