package rendergraph

// Command is one entry of a node's command list. The concrete types are
// LoadShader, LoadTexture, BindTexture, UseMaterial, DrawMesh, and
// DrawMeshInstanced.
type Command interface {
	command() string
}

// LoadShader sets the node's WGSL shader. The file must define the entry
// points vert_main and frag_main. When several appear, the last one wins.
type LoadShader struct {
	Path string
}

// LoadTexture loads a texture into the cache without binding it.
type LoadTexture struct {
	Path string
}

// BindTexture binds the texture at Path to bind group Slot for the draws
// that follow it. A later BindTexture on the same slot replaces it.
type BindTexture struct {
	Slot uint32
	Path string
}

// UseMaterial expands into the BindTexture commands of a material that was
// registered with ResourceCache.AddMaterial.
type UseMaterial struct {
	ID string
}

// DrawMesh draws every submesh of the model at Path once.
type DrawMesh struct {
	Path string
}

// DrawMeshInstanced draws the model at Path once per transform. The
// transforms are uploaded as a per-instance vertex stream.
type DrawMeshInstanced struct {
	Path       string
	Transforms []Transform
}

func (LoadShader) command() string        { return "LoadShader" }
func (LoadTexture) command() string       { return "LoadTexture" }
func (BindTexture) command() string       { return "BindTexture" }
func (UseMaterial) command() string       { return "UseMaterial" }
func (DrawMesh) command() string          { return "DrawMesh" }
func (DrawMeshInstanced) command() string { return "DrawMeshInstanced" }
