package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rendergraph"
)

// Bindings holds the GPU state Apply created that callers update per frame.
type Bindings struct {
	// Camera is nil when the scene has no camera.
	Camera *rendergraph.Camera

	cameraBuffers []*rendergraph.UniformBuffer
}

// UpdateCamera uploads the camera's current view-projection to every node
// that declared camera = true.
func (b *Bindings) UpdateCamera() error {
	if b.Camera == nil {
		return nil
	}
	for _, buf := range b.cameraBuffers {
		if err := buf.Update(b.Camera); err != nil {
			return err
		}
	}
	return nil
}

// Apply registers the scene's materials with the renderer's cache and adds
// one node per scene node, in file order. The caller still calls
// Initialize. cam is used for camera uniforms; when nil, the scene's own
// camera is created at the surface aspect.
//
// Apply is used again after Renderer.Reset to rebuild from an edited file.
func (s *Scene) Apply(r *rendergraph.Renderer, cam *rendergraph.Camera) (*Bindings, error) {
	if r.Graph().Built() {
		return nil, rendergraph.ErrGraphAlreadyBuilt
	}
	if cam == nil {
		w, h := r.Config().Size()
		cam = s.NewCamera(float32(w) / float32(h))
	}

	for _, m := range s.Materials {
		r.Cache().AddMaterial(rendergraph.MaterialHandle(m.ID), s.material(m))
	}

	b := &Bindings{Camera: cam}
	for _, n := range s.Nodes {
		nb, err := s.node(r, n, b)
		if err != nil {
			return nil, fmt.Errorf("scene: node %q: %w", n.Name, err)
		}
		if err := r.AddRenderNode(nb); err != nil {
			return nil, fmt.Errorf("scene: node %q: %w", n.Name, err)
		}
	}
	rendergraph.Logger().Debug("scene applied",
		"nodes", len(s.Nodes), "materials", len(s.Materials), "dir", s.dir)
	return b, nil
}

func (s *Scene) material(m Material) *rendergraph.Material {
	mat := rendergraph.NewMaterial(m.ID)
	if m.Base != "" {
		base := rendergraph.MaterialHandle(m.Base)
		mat.Base = &base
	}
	if m.Color != nil {
		mat.Color = mgl32.Vec4(*m.Color)
	}
	if m.Specular != nil {
		mat.Specular = mgl32.Vec3(*m.Specular)
	}
	if m.Roughness != nil {
		mat.Roughness = *m.Roughness
	}
	mat.AlbedoTexture = s.Resolve(m.Albedo)
	mat.NormalTexture = s.Resolve(m.Normal)
	return mat
}

func (s *Scene) node(r *rendergraph.Renderer, n Node, b *Bindings) (*rendergraph.NodeBuilder, error) {
	nb := r.NewNode(n.Name).
		UseDepth(n.Depth).
		AddCommand(rendergraph.LoadShader{Path: s.Resolve(n.Shader)})

	if n.Camera {
		if b.Camera == nil {
			return nil, ErrCameraNotDefined
		}
		buf, err := nb.AddUniformBuffer(b.Camera, rendergraph.UniformStatic)
		if err != nil {
			return nil, err
		}
		b.cameraBuffers = append(b.cameraBuffers, buf)
	}
	for _, u := range n.Uniforms {
		kind, err := uniformKind(u.Kind)
		if err != nil {
			return nil, err
		}
		if _, err := nb.AddUniformBuffer(rendergraph.PODUniform[[]float32]{Value: u.Values}, kind); err != nil {
			return nil, err
		}
	}

	for _, c := range n.Commands {
		nb.AddCommand(s.command(c))
	}
	return nb, nil
}

func (s *Scene) command(c Command) rendergraph.Command {
	path := s.Resolve(c.Path)
	switch c.Type {
	case CommandLoadTexture:
		return rendergraph.LoadTexture{Path: path}
	case CommandBindTexture:
		return rendergraph.BindTexture{Slot: c.Slot, Path: path}
	case CommandUseMaterial:
		return rendergraph.UseMaterial{ID: c.Material}
	case CommandDrawInstanced:
		return rendergraph.DrawMeshInstanced{Path: path, Transforms: c.Transforms()}
	default:
		return rendergraph.DrawMesh{Path: path}
	}
}
