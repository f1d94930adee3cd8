package rendergraph

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PassEncoder begins render passes. hal.CommandEncoder satisfies it.
type PassEncoder interface {
	BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder
}

// drawRecorder is the subset of hal.RenderPassEncoder a node replays into.
type drawRecorder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

var _ drawRecorder = hal.RenderPassEncoder(nil)
