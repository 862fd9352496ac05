package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints overrides the vertex and fragment function names.
//
// Parameters:
//   - vertex: the vertex stage function name
//   - fragment: the fragment stage function name
//
// Returns:
//   - PipelineBuilderOption: the option
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntryPoint, p.fragmentEntryPoint = vertex, fragment
	}
}

// WithVertexLayouts sets the vertex buffer layouts, in slot order.
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

// WithDepth sets depth testing, depth writes and the compare function together.
//
// Parameters:
//   - test: whether fragments are depth tested
//   - write: whether passing fragments write depth
//   - compare: the compare function used when test is true
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepth(test, write bool, compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depth.test, p.depth.write, p.depth.compare = test, write, compare
	}
}

// WithDepthBias offsets depth values, e.g. to keep coplanar decals from z-fighting.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depth.bias, p.depth.biasSlopeScale = bias, slopeScale
	}
}

// WithCullMode sets which faces are culled. CullModeNone renders both sides.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding treated as front facing.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color target write mask.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState sets the color target blend state. Nil disables blending.
//
// Parameters:
//   - blendState: the blend state, or nil
//
// Returns:
//   - PipelineBuilderOption: the option
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blend = blendState
	}
}
