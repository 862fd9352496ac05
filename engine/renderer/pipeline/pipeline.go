package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// depthState is the depth-stencil portion of a pipeline. The depth attachment format is owned by
// the GraphicsContext.
type depthState struct {
	test, write    bool
	compare        wgpu.CompareFunction
	bias           int32
	biasSlopeScale float32
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key PipelineKey

	// shaderSource is one WGSL module holding both entry points
	shaderSource                         string
	vertexEntryPoint, fragmentEntryPoint string

	// vertexLayouts are bound at slots 0..n in order
	vertexLayouts []wgpu.VertexBufferLayout

	depth     depthState
	cullMode  wgpu.CullMode
	topology  wgpu.PrimitiveTopology
	frontFace wgpu.FrontFace
	writeMask wgpu.ColorWriteMask
	blend     *wgpu.BlendState
}

// Pipeline describes a render pipeline without owning any GPU object: the WGSL module, its entry
// points, the vertex buffer layouts and the fixed-function state. A GraphicsContext turns it into a
// Handle, and a PipelineCache keeps that Handle under Key.
type Pipeline interface {
	// Key returns the cache key identifying this pipeline.
	//
	// Returns:
	//   - PipelineKey: the key for this pipeline
	Key() PipelineKey

	// ShaderSource returns the WGSL source compiled for both stages.
	ShaderSource() string

	// VertexEntryPoint returns the vertex stage function, "vs_main" unless overridden.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage function, "fs_main" unless overridden.
	FragmentEntryPoint() string

	// VertexLayouts returns the vertex buffer layouts in slot order.
	VertexLayouts() []wgpu.VertexBufferLayout

	// DepthTestEnabled reports whether fragments are tested against the depth buffer.
	// When false the backend compares with Always.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether passing fragments write depth.
	DepthWriteEnabled() bool

	// DepthCompare returns the depth compare function, Less by default.
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the constant depth bias.
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias.
	DepthBiasSlopeScale() float32

	// CullMode returns the face culling mode, Back by default.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology, TriangleList by default.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding treated as front facing, CCW by default.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color target write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the color target blend state. Nil disables blending.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, ReplaceBlend by default
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

var replaceComponent = wgpu.BlendComponent{
	SrcFactor: wgpu.BlendFactorOne,
	DstFactor: wgpu.BlendFactorZero,
	Operation: wgpu.BlendOperationAdd,
}

// ReplaceBlend writes source color and alpha over the destination unchanged.
var ReplaceBlend = wgpu.BlendState{Color: replaceComponent, Alpha: replaceComponent}

// NewPipeline describes a depth-tested, back-face-culled triangle list pipeline with replace
// blending. Options override any of it.
//
// Parameters:
//   - key: the cache key for this pipeline
//   - shaderSource: the WGSL source containing the vertex and fragment entry points
//   - opts: options applied in order
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(key PipelineKey, shaderSource string, opts ...PipelineBuilderOption) Pipeline {
	blend := ReplaceBlend
	p := &pipeline{
		key:                key,
		shaderSource:       shaderSource,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
		depth:              depthState{test: true, write: true, compare: wgpu.CompareFunctionLess},
		cullMode:           wgpu.CullModeBack,
		topology:           wgpu.PrimitiveTopologyTriangleList,
		frontFace:          wgpu.FrontFaceCCW,
		writeMask:          wgpu.ColorWriteMaskAll,
		blend:              &blend,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() PipelineKey                         { return p.key }
func (p *pipeline) ShaderSource() string                     { return p.shaderSource }
func (p *pipeline) VertexEntryPoint() string                 { return p.vertexEntryPoint }
func (p *pipeline) FragmentEntryPoint() string               { return p.fragmentEntryPoint }
func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout { return p.vertexLayouts }
func (p *pipeline) DepthTestEnabled() bool                   { return p.depth.test }
func (p *pipeline) DepthWriteEnabled() bool                  { return p.depth.write }
func (p *pipeline) DepthCompare() wgpu.CompareFunction       { return p.depth.compare }
func (p *pipeline) DepthBias() int32                         { return p.depth.bias }
func (p *pipeline) DepthBiasSlopeScale() float32             { return p.depth.biasSlopeScale }
func (p *pipeline) CullMode() wgpu.CullMode                  { return p.cullMode }
func (p *pipeline) Topology() wgpu.PrimitiveTopology         { return p.topology }
func (p *pipeline) FrontFace() wgpu.FrontFace                { return p.frontFace }
func (p *pipeline) WriteMask() wgpu.ColorWriteMask           { return p.writeMask }
func (p *pipeline) BlendState() *wgpu.BlendState             { return p.blend }
