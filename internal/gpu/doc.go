// Package gpu holds the HAL plumbing behind rendergraph.
//
// It talks directly to github.com/gogpu/wgpu/hal and knows nothing about
// nodes, commands, or resource identity. The root package builds on it:
//
//   - BuildPipeline assembles a render pipeline from a shader, bind group
//     layouts, and vertex layouts.
//   - CompileShader validates WGSL with naga and creates a SPIR-V module.
//   - CreateBufferInit, CreateTexture2D, and CreateDepthTexture create and
//     upload GPU resources.
//   - ReadTexture copies a render target back to host memory.
//
// Every function takes the device (and queue where an upload happens)
// explicitly. Nothing in this package holds global GPU state apart from
// the logger.
package gpu
