package rendergraph

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// Vertex is the per-vertex input of every mesh.
//
//	@location(0) position: vec3<f32>
//	@location(1) normal: vec3<f32>
//	@location(2) tex_coords: vec2<f32>
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	TexCoords [2]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 32

// Instance is the per-instance input of instanced draws: a model matrix
// bound as four vec4 columns at locations 3 through 6.
type Instance struct {
	Model mgl32.Mat4
}

// InstanceStride is the byte size of one Instance.
const InstanceStride = 64

// VertexLayout returns the vertex buffer layout of Vertex.
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// InstanceLayout returns the vertex buffer layout of Instance.
func InstanceLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: InstanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 3},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 4},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 5},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 6},
		},
	}
}

func vertexBytes(vertices []Vertex) []byte {
	floats := make([]float32, 0, len(vertices)*8)
	for _, v := range vertices {
		floats = append(floats,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.TexCoords[0], v.TexCoords[1],
		)
	}
	return gpu.Float32Bytes(floats...)
}

func instanceBytes(instances []Instance) []byte {
	floats := make([]float32, 0, len(instances)*16)
	for _, inst := range instances {
		floats = append(floats, inst.Model[:]...)
	}
	return gpu.Float32Bytes(floats...)
}
