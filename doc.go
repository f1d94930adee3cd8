// Package rendergraph is a small real-time rendering framework built on the
// gogpu WebGPU HAL.
//
// # Overview
//
// A frame is described as an ordered list of render nodes. Each node names
// a WGSL shader, a list of draw commands, and its uniform buffers. At
// Initialize every node is built once: its commands are resolved against a
// shared ResourceCache (meshes, textures, materials, depth), its shader is
// compiled with naga, and one immutable pipeline is created. Every frame,
// the nodes replay their resolved commands into the same color and depth
// target in order.
//
// # Quick Start
//
//	surface := rendergraph.NewOffscreenSurface()
//	r, err := rendergraph.NewRenderer(device, queue, surface, 800, 600)
//	if err != nil { ... }
//	defer r.Destroy()
//
//	node := r.NewNode("scene").
//	    UseDepth(true).
//	    AddCommand(rendergraph.LoadShader{Path: "shader.wgsl"}).
//	    AddCommand(rendergraph.BindTexture{Slot: 1, Path: "albedo.png"}).
//	    AddCommand(rendergraph.DrawMesh{Path: "cube.obj"})
//	camera, _ := node.AddUniformBuffer(rendergraph.NewCamera(eye, 800.0/600.0), rendergraph.UniformStatic)
//	r.AddRenderNode(node)
//
//	if err := r.Initialize(); err != nil { ... }
//	for running {
//	    camera.Update(cam)
//	    if err := r.Render(); err != nil { ... }
//	}
//
// # Bind groups
//
// A node's pipeline layout is, in order: the static uniform set (if any),
// the dynamic uniform set (if any), then one texture group per distinct
// BindTexture slot in the order the slots first appear. Uniform buffer i
// of a set is at binding i. A texture group has the texture at binding 0
// and its sampler at binding 1. Shaders must declare groups to match.
//
// Each new BindTexture slot must equal the group index it lands at; Build
// fails with ErrTextureSlotMismatch otherwise. UseMaterial binds albedo to
// the first group after the uniform sets and normal to the next one,
// unless SetTextureSlots or WithTextureSlots choose other groups.
//
// # Vertex input
//
// Meshes use Vertex at buffer slot 0 (locations 0 through 2). Instanced
// draws add Instance at slot 1 (locations 3 through 6, one vec4 per model
// matrix column). In a node that mixes both, plain DrawMesh draws bind a
// single identity instance at slot 1.
//
// # Depth
//
// Node 0 clears the depth attachment and later nodes load it, so a graph
// that uses depth anywhere should enable it on node 0.
//
// # Coordinate System
//
// Camera produces right-handed view matrices and perspective projections
// remapped to the WebGPU depth range [0, 1]. Front faces are
// counter-clockwise and back faces are culled.
package rendergraph

// Version is the current version of the library.
const Version = "0.1.0"
