package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Default shader entry points.
const (
	DefaultVertexEntry   = "vert_main"
	DefaultFragmentEntry = "frag_main"
)

// DepthFormat is the format of every depth attachment and depth-stencil state.
const DepthFormat = gputypes.TextureFormatDepth32Float

// ErrNilShader is returned when BuildPipeline is called without a module.
var ErrNilShader = errors.New("gpu: pipeline needs a shader module")

// PipelineConfig describes a render pipeline.
type PipelineConfig struct {
	Label            string
	Shader           hal.ShaderModule
	BindGroupLayouts []hal.BindGroupLayout
	VertexBuffers    []gputypes.VertexBufferLayout
	ColorFormat      gputypes.TextureFormat
	UseDepth         bool

	// Entry points default to DefaultVertexEntry and DefaultFragmentEntry.
	VertexEntry   string
	FragmentEntry string
}

// Pipeline is an immutable render pipeline together with its layout.
// Rebuilding means creating a new Pipeline.
type Pipeline struct {
	device   hal.Device
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
	label    string
	depth    bool
}

// AlphaBlend is standard source-over alpha blending.
var AlphaBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	},
}

// BuildPipeline creates the pipeline layout and render pipeline for cfg.
//
// The pipeline draws triangle lists with counter-clockwise front faces and
// back-face culling into one color target. With UseDepth it also carries a
// Depth32Float state that writes depth and passes on Less.
func BuildPipeline(device hal.Device, cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Shader == nil {
		return nil, ErrNilShader
	}
	vertexEntry := cfg.VertexEntry
	if vertexEntry == "" {
		vertexEntry = DefaultVertexEntry
	}
	fragmentEntry := cfg.FragmentEntry
	if fragmentEntry == "" {
		fragmentEntry = DefaultFragmentEntry
	}

	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            cfg.Label + "_layout",
		BindGroupLayouts: cfg.BindGroupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout %s: %w", cfg.Label, err)
	}

	blend := AlphaBlend
	desc := &hal.RenderPipelineDescriptor{
		Label:  cfg.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     cfg.Shader,
			EntryPoint: vertexEntry,
			Buffers:    cfg.VertexBuffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		DepthStencil: depthStencilState(cfg.UseDepth),
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     cfg.Shader,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.ColorFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
	}

	pipeline, err := device.CreateRenderPipeline(desc)
	if err != nil {
		device.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("create render pipeline %s: %w", cfg.Label, err)
	}

	slogger().Debug("pipeline built",
		"label", cfg.Label,
		"bind_groups", len(cfg.BindGroupLayouts),
		"vertex_buffers", len(cfg.VertexBuffers),
		"depth", cfg.UseDepth,
	)
	return &Pipeline{
		device:   device,
		layout:   layout,
		pipeline: pipeline,
		label:    cfg.Label,
		depth:    cfg.UseDepth,
	}, nil
}

// depthStencilState returns nil when depth is disabled. The stencil faces
// always pass and keep so the state is depth-only.
func depthStencilState(useDepth bool) *hal.DepthStencilState {
	if !useDepth {
		return nil
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLess,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0,
		StencilWriteMask:  0,
	}
}

// Raw returns the HAL render pipeline.
func (p *Pipeline) Raw() hal.RenderPipeline { return p.pipeline }

// Label returns the debug label the pipeline was built with.
func (p *Pipeline) Label() string { return p.label }

// UsesDepth reports whether the pipeline has a depth-stencil state.
func (p *Pipeline) UsesDepth() bool { return p.depth }

// Destroy releases the pipeline and its layout. Safe to call twice.
func (p *Pipeline) Destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
}
