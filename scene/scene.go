// Package scene describes render graphs in TOML files.
//
// A scene file names the renderer settings, an optional camera, materials,
// and an ordered list of nodes:
//
//	[renderer]
//	width = 800
//	height = 600
//	clear_color = [0.05, 0.05, 0.08, 1.0]
//
//	[camera]
//	position = [0.0, 1.5, 6.0]
//
//	[[material]]
//	id = "wood"
//	albedo = "textures/wood.png"
//
//	[[node]]
//	name = "main"
//	shader = "shaders/lit.wgsl"
//	depth = true
//	camera = true
//
//	[[node.command]]
//	type = "use_material"
//	material = "wood"
//
//	[[node.command]]
//	type = "draw_mesh"
//	path = "models/cube.obj"
//
// Relative paths are resolved against the directory of the scene file.
// Unknown keys are rejected.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph"
)

// Validation errors.
var (
	ErrNoNodes          = errors.New("scene: no nodes")
	ErrInvalidNode      = errors.New("scene: invalid node")
	ErrInvalidCommand   = errors.New("scene: invalid command")
	ErrInvalidMaterial  = errors.New("scene: invalid material")
	ErrInvalidFormat    = errors.New("scene: unknown color format")
	ErrInvalidUniform   = errors.New("scene: invalid uniform")
	ErrCameraNotDefined = errors.New("scene: node uses camera but scene has none")
	ErrInvalidSlots     = errors.New("scene: albedo_slot and normal_slot must be set together")
	ErrDepthNotCleared  = errors.New("scene: a node uses depth but the first node does not")
)

// Default renderer size.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Command types.
const (
	CommandLoadTexture   = "load_texture"
	CommandBindTexture   = "bind_texture"
	CommandUseMaterial   = "use_material"
	CommandDrawMesh      = "draw_mesh"
	CommandDrawInstanced = "draw_instanced"
)

var formats = map[string]gputypes.TextureFormat{
	"bgra8unorm":      gputypes.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": gputypes.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": gputypes.TextureFormatRGBA8UnormSrgb,
}

// Scene is a decoded scene file.
type Scene struct {
	Renderer  Renderer   `toml:"renderer"`
	Camera    *Camera    `toml:"camera"`
	Materials []Material `toml:"material"`
	Nodes     []Node     `toml:"node"`

	dir string
}

// Renderer holds renderer settings. Zero values select defaults.
type Renderer struct {
	Width      uint32      `toml:"width"`
	Height     uint32      `toml:"height"`
	ClearColor *[4]float64 `toml:"clear_color"`
	Format     string      `toml:"format"`
	AlbedoSlot *uint32     `toml:"albedo_slot"`
	NormalSlot *uint32     `toml:"normal_slot"`
}

// Camera places the scene camera. Angles are degrees.
type Camera struct {
	Position [3]float32 `toml:"position"`
	Yaw      *float32   `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
}

// Material is registered with the resource cache before nodes are built.
type Material struct {
	ID        string      `toml:"id"`
	Base      string      `toml:"base"`
	Color     *[4]float32 `toml:"color"`
	Specular  *[3]float32 `toml:"specular"`
	Roughness *float32    `toml:"roughness"`
	Albedo    string      `toml:"albedo"`
	Normal    string      `toml:"normal"`
}

// Node is one render node.
type Node struct {
	Name     string    `toml:"name"`
	Shader   string    `toml:"shader"`
	Depth    bool      `toml:"depth"`
	Camera   bool      `toml:"camera"`
	Uniforms []Uniform `toml:"uniform"`
	Commands []Command `toml:"command"`
}

// Uniform is a raw float uniform buffer. Kind is "static" (default) or
// "dynamic".
type Uniform struct {
	Kind   string    `toml:"kind"`
	Values []float32 `toml:"values"`
}

// Command is one node command. Type selects which other fields apply.
type Command struct {
	Type      string      `toml:"type"`
	Path      string      `toml:"path"`
	Slot      uint32      `toml:"slot"`
	Material  string      `toml:"material"`
	Instances []Transform `toml:"instance"`
	Grid      *Grid       `toml:"grid"`
}

// Transform places one instance. Rotation is Euler XYZ in degrees. A
// missing scale is 1.
type Transform struct {
	Position [3]float32  `toml:"position"`
	Rotation [3]float32  `toml:"rotation"`
	Scale    *[3]float32 `toml:"scale"`
}

// Grid generates Columns x Rows instances on the XZ plane, centered on the
// origin.
type Grid struct {
	Columns int     `toml:"columns"`
	Rows    int     `toml:"rows"`
	Spacing float32 `toml:"spacing"`
	Scale   float32 `toml:"scale"`
}

// Dir returns the directory relative paths are resolved against.
func (s *Scene) Dir() string { return s.dir }

// Resolve returns p relative to the scene directory. Absolute paths are
// returned unchanged.
func (s *Scene) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

// Validate checks references and command fields.
func (s *Scene) Validate() error {
	if len(s.Nodes) == 0 {
		return ErrNoNodes
	}
	if f := s.Renderer.Format; f != "" {
		if _, ok := formats[f]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
		}
	}
	if (s.Renderer.AlbedoSlot == nil) != (s.Renderer.NormalSlot == nil) {
		return ErrInvalidSlots
	}
	// Only the first node clears depth.
	if !s.Nodes[0].Depth {
		for _, n := range s.Nodes[1:] {
			if n.Depth {
				return fmt.Errorf("node %q: %w", n.Name, ErrDepthNotCleared)
			}
		}
	}

	ids := make(map[string]bool, len(s.Materials))
	for _, m := range s.Materials {
		if m.ID == "" {
			return fmt.Errorf("%w: missing id", ErrInvalidMaterial)
		}
		if ids[m.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidMaterial, m.ID)
		}
		ids[m.ID] = true
	}
	for _, m := range s.Materials {
		if m.Base != "" && !ids[m.Base] {
			return fmt.Errorf("%w: %q has unknown base %q", ErrInvalidMaterial, m.ID, m.Base)
		}
	}

	names := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Name == "" {
			return fmt.Errorf("%w: node %d has no name", ErrInvalidNode, i)
		}
		if names[n.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidNode, n.Name)
		}
		names[n.Name] = true
		if n.Shader == "" {
			return fmt.Errorf("%w: %q has no shader", ErrInvalidNode, n.Name)
		}
		if n.Camera && s.Camera == nil {
			return fmt.Errorf("node %q: %w", n.Name, ErrCameraNotDefined)
		}
		for _, u := range n.Uniforms {
			if len(u.Values) == 0 {
				return fmt.Errorf("%w: node %q has an empty uniform", ErrInvalidUniform, n.Name)
			}
			if _, err := uniformKind(u.Kind); err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
		}
		for j, c := range n.Commands {
			if err := c.validate(ids); err != nil {
				return fmt.Errorf("node %q command %d: %w", n.Name, j, err)
			}
		}
	}
	return nil
}

func (c Command) validate(materials map[string]bool) error {
	switch c.Type {
	case CommandLoadTexture, CommandBindTexture, CommandDrawMesh:
		if c.Path == "" {
			return fmt.Errorf("%w: %s needs a path", ErrInvalidCommand, c.Type)
		}
	case CommandUseMaterial:
		if !materials[c.Material] {
			return fmt.Errorf("%w: unknown material %q", ErrInvalidCommand, c.Material)
		}
	case CommandDrawInstanced:
		if c.Path == "" {
			return fmt.Errorf("%w: %s needs a path", ErrInvalidCommand, c.Type)
		}
		if len(c.Transforms()) == 0 {
			return fmt.Errorf("%w: %s needs instances or a grid", ErrInvalidCommand, c.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, c.Type)
	}
	return nil
}

func uniformKind(kind string) (rendergraph.UniformKind, error) {
	switch kind {
	case "", "static":
		return rendergraph.UniformStatic, nil
	case "dynamic":
		return rendergraph.UniformDynamic, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidUniform, kind)
	}
}

// Size returns the renderer size, defaulting to 800x600.
func (s *Scene) Size() (width, height uint32) {
	width, height = s.Renderer.Width, s.Renderer.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	return width, height
}

// Options returns the renderer options the scene sets.
func (s *Scene) Options() []rendergraph.RendererOption {
	var opts []rendergraph.RendererOption
	if c := s.Renderer.ClearColor; c != nil {
		opts = append(opts, rendergraph.WithClearColor(gputypes.Color{R: c[0], G: c[1], B: c[2], A: c[3]}))
	}
	if f, ok := formats[s.Renderer.Format]; ok {
		opts = append(opts, rendergraph.WithColorFormat(f))
	}
	if s.Renderer.AlbedoSlot != nil && s.Renderer.NormalSlot != nil {
		opts = append(opts, rendergraph.WithTextureSlots(*s.Renderer.AlbedoSlot, *s.Renderer.NormalSlot))
	}
	return opts
}

// NewCamera returns the scene camera, or nil when the scene has none.
func (s *Scene) NewCamera(aspect float32) *rendergraph.Camera {
	if s.Camera == nil {
		return nil
	}
	cam := rendergraph.NewCamera(mgl32.Vec3(s.Camera.Position), aspect)
	if s.Camera.Yaw != nil {
		cam.Yaw = *s.Camera.Yaw
	}
	cam.Rotate(0, s.Camera.Pitch)
	if s.Camera.FOV > 0 {
		cam.FOV = s.Camera.FOV
	}
	if s.Camera.Near > 0 {
		cam.Near = s.Camera.Near
	}
	if s.Camera.Far > 0 {
		cam.Far = s.Camera.Far
	}
	return cam
}

// Transforms returns the command's explicit instances followed by its grid.
func (c Command) Transforms() []rendergraph.Transform {
	out := make([]rendergraph.Transform, 0, len(c.Instances))
	for _, t := range c.Instances {
		out = append(out, t.transform())
	}
	if g := c.Grid; g != nil && g.Columns > 0 && g.Rows > 0 {
		out = append(out, g.transforms()...)
	}
	return out
}

func (t Transform) transform() rendergraph.Transform {
	tr := rendergraph.NewTransform()
	tr.Position = mgl32.Vec3(t.Position)
	tr.Rotation = mgl32.Vec3{
		mgl32.DegToRad(t.Rotation[0]),
		mgl32.DegToRad(t.Rotation[1]),
		mgl32.DegToRad(t.Rotation[2]),
	}
	if t.Scale != nil {
		tr.Scale = mgl32.Vec3(*t.Scale)
	}
	return tr
}

func (g *Grid) transforms() []rendergraph.Transform {
	spacing := g.Spacing
	if spacing == 0 {
		spacing = 1
	}
	scale := g.Scale
	if scale == 0 {
		scale = 1
	}
	x0 := -spacing * float32(g.Columns-1) / 2
	z0 := -spacing * float32(g.Rows-1) / 2

	out := make([]rendergraph.Transform, 0, g.Columns*g.Rows)
	for row := range g.Rows {
		for col := range g.Columns {
			tr := rendergraph.NewTransform()
			tr.Position = mgl32.Vec3{x0 + spacing*float32(col), 0, z0 + spacing*float32(row)}
			tr.Scale = mgl32.Vec3{scale, scale, scale}
			out = append(out, tr)
		}
	}
	return out
}

// Files returns every file the scene references, resolved and sorted,
// without duplicates. Watch these to rebuild on change.
func (s *Scene) Files() []string {
	var files []string
	add := func(p string) {
		if p != "" {
			files = append(files, s.Resolve(p))
		}
	}
	for _, m := range s.Materials {
		add(m.Albedo)
		add(m.Normal)
	}
	for _, n := range s.Nodes {
		add(n.Shader)
		for _, c := range n.Commands {
			add(c.Path)
		}
	}
	slices.Sort(files)
	return slices.Compact(files)
}
