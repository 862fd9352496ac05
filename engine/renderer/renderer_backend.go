package renderer

import (
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// DrawCall is one indexed, instanced draw recorded into the current render pass.
type DrawCall struct {
	// Pipeline is the compiled pipeline returned by CreateRenderPipeline.
	Pipeline pipeline.Handle
	// Mesh holds the vertex buffer bound at slot 0 and the index buffer.
	Mesh bind_group_provider.BindGroupProvider
	// Instances is the per-instance buffer bound at slot 1.
	Instances *wgpu.Buffer
	// InstanceCount is the number of instances drawn from Instances.
	InstanceCount uint32
	// BindGroups are set at group indices 0..n in order.
	BindGroups []*wgpu.BindGroup
}

// FrameBackend is the graphics surface the FrameRenderer drives each frame. The wgpu
// GraphicsContext implements it; tests substitute an in-memory fake.
type FrameBackend interface {
	// SurfaceFormat returns the texture format the surface is currently configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// Reconfigure reconfigures the surface and depth texture for a new size. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Reconfigure(width, height int)

	// CreateUniformBinding creates a uniform buffer at binding 0, its bind group layout and bind group.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider owning the created resources
	//   - error: an error if any resource could not be created
	CreateUniformBinding(label string, size uint64) (bind_group_provider.BindGroupProvider, error)

	// CreateVertexBuffer creates a vertex-usage buffer initialized with data.
	//
	// Parameters:
	//   - label: the debug label
	//   - data: the initial contents
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if the buffer could not be created
	CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error)

	// CreateRenderPipeline compiles a render pipeline against the current surface format.
	//
	// Parameters:
	//   - p: the pipeline description
	//   - layouts: the bind group layouts in group order
	//
	// Returns:
	//   - pipeline.Handle: the compiled pipeline
	//   - error: an error if compilation failed
	CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (pipeline.Handle, error)

	// WriteBuffers writes staged data into provider buffers on the queue.
	//
	// Parameters:
	//   - writes: the buffer writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next presentable image and begins a render pass that clears
	// color to clear and depth to 1.0. On failure no frame state is held.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: the acquire failure, classifiable with ClassifyAcquireError
	BeginFrame(clear wgpu.Color) error

	// Draw records one draw call into the pass started by BeginFrame.
	//
	// Parameters:
	//   - call: the draw call
	Draw(call DrawCall)

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired image and releases per-frame resources.
	Present()
}
