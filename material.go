package rendergraph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// maxMaterialDepth bounds base material chains.
const maxMaterialDepth = 16

// Material describes surface parameters and textures. A material with a Base
// inherits any texture it does not set itself.
type Material struct {
	Name      string
	Base      *ResourceHandle
	Color     mgl32.Vec4
	Specular  mgl32.Vec3
	Roughness float32

	// Texture paths. Empty means inherit from Base, or none.
	AlbedoTexture string
	NormalTexture string
}

// NewMaterial returns an opaque white material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Color:     mgl32.Vec4{1, 1, 1, 1},
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		Roughness: 0.5,
	}
}

// IsBase reports whether the material has no base material.
func (m *Material) IsBase() bool { return m.Base == nil }

// UniformBytes returns the material parameters in WGSL uniform layout:
//
//	struct Material { color: vec4<f32>, specular: vec3<f32>, roughness: f32 }
func (m *Material) UniformBytes() []byte {
	return gpu.Float32Bytes(
		m.Color[0], m.Color[1], m.Color[2], m.Color[3],
		m.Specular[0], m.Specular[1], m.Specular[2], m.Roughness,
	)
}

// materialLookup resolves base materials.
type materialLookup func(ResourceHandle) (*Material, bool)

// Commands returns the BindTexture commands for the material's albedo and
// normal textures, walking base materials for unset textures.
func (m *Material) Commands(albedoSlot, normalSlot uint32, lookup materialLookup) ([]Command, error) {
	albedo, normal := m.AlbedoTexture, m.NormalTexture
	seen := map[*Material]bool{m: true}
	for cur := m; (albedo == "" || normal == "") && cur.Base != nil; {
		if len(seen) > maxMaterialDepth {
			return nil, fmt.Errorf("material %q: %w", m.Name, ErrMaterialCycle)
		}
		base, ok := lookup(*cur.Base)
		if !ok {
			return nil, fmt.Errorf("material %q base %s: %w", m.Name, cur.Base.ID, ErrMaterialNotFound)
		}
		if seen[base] {
			return nil, fmt.Errorf("material %q: %w", m.Name, ErrMaterialCycle)
		}
		seen[base] = true
		if albedo == "" {
			albedo = base.AlbedoTexture
		}
		if normal == "" {
			normal = base.NormalTexture
		}
		cur = base
	}

	var cmds []Command
	if albedo != "" {
		cmds = append(cmds, BindTexture{Slot: albedoSlot, Path: albedo})
	}
	if normal != "" {
		cmds = append(cmds, BindTexture{Slot: normalSlot, Path: normal})
	}
	return cmds, nil
}
