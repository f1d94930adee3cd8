package rendergraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformMatrix(t *testing.T) {
	tr := Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.Vec3{0, 0, math.Pi / 2},
		Scale:    mgl32.Vec3{2, 2, 2},
	}
	m := tr.Matrix()

	// Scale by 2, rotate +X onto +Y, then translate.
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{1, 4, 3, 1}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Matrix() * (1,0,0) = %v, want %v", got, want)
	}

	if id := NewTransform().Matrix(); !id.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("NewTransform().Matrix() = %v, want identity", id)
	}
}

func TestTransformRotationOrder(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = mgl32.Vec3{math.Pi / 2, math.Pi / 2, 0}

	want := mgl32.HomogRotate3DX(math.Pi / 2).Mul4(mgl32.HomogRotate3DY(math.Pi / 2))
	if got := tr.Matrix(); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("Matrix() = %v, want Rx*Ry = %v", got, want)
	}
}

func TestTransformUniformBytes(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{5, 0, 0}
	b := tr.UniformBytes()
	if len(b) != 64 {
		t.Fatalf("len(UniformBytes()) = %d, want 64", len(b))
	}
	// Column 3, row 0 holds the X translation: float 12 at byte 48.
	if got := math.Float32frombits(uint32(b[48]) | uint32(b[49])<<8 | uint32(b[50])<<16 | uint32(b[51])<<24); got != 5 {
		t.Errorf("translation X = %v, want 5", got)
	}
	if inst := tr.Instance(); inst.Model != tr.Matrix() {
		t.Error("Instance().Model differs from Matrix()")
	}
}
