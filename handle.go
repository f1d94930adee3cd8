package rendergraph

import "fmt"

// ResourceKind is the kind of a cached resource.
type ResourceKind uint8

const (
	// KindMesh identifies a mesh loaded from a model file.
	KindMesh ResourceKind = iota
	// KindTexture identifies an image texture.
	KindTexture
	// KindMaterial identifies a material registered with the cache.
	KindMaterial
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindTexture:
		return "Texture"
	case KindMaterial:
		return "Material"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ResourceHandle identifies a cached resource. Handles compare by both ID and
// Kind, so a mesh and a texture with the same ID are distinct.
type ResourceHandle struct {
	ID   string
	Kind ResourceKind
}

// MeshHandle returns the handle of the mesh with the given id.
func MeshHandle(id string) ResourceHandle { return ResourceHandle{ID: id, Kind: KindMesh} }

// TextureHandle returns the handle of the texture with the given id.
func TextureHandle(id string) ResourceHandle { return ResourceHandle{ID: id, Kind: KindTexture} }

// MaterialHandle returns the handle of the material with the given id.
func MaterialHandle(id string) ResourceHandle { return ResourceHandle{ID: id, Kind: KindMaterial} }

// String returns "Kind(id)".
func (h ResourceHandle) String() string {
	return fmt.Sprintf("%s(%s)", h.Kind, h.ID)
}
