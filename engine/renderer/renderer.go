package renderer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/sloth/engine/camera"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sloth/engine/renderer/shader"
	"github.com/Carmen-Shannon/sloth/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/texture.wgsl
var textureShaderBody string

// TextureShaderID identifies the built-in textured shader in pipeline keys.
const TextureShaderID = "texture.wgsl"

// TextureShaderSource is the complete WGSL module for the built-in textured shader, composed of
// the camera, vertex and material struct definitions followed by the stage functions.
var TextureShaderSource = camera.GPUCameraUniformSource + "\n" +
	model.GPUVertexSource + "\n" +
	model.GPUMaterialFactorSource + "\n" +
	textureShaderBody

// FrameResult reports what RenderFrame did with the frame.
type FrameResult int

const (
	// FrameSkipped means nothing was presented; the loop should continue with the next tick.
	FrameSkipped FrameResult = iota

	// FramePresented means the frame was submitted and presented.
	FramePresented
)

func (r FrameResult) String() string {
	if r == FramePresented {
		return "presented"
	}
	return "skipped"
}

// renderer is the implementation of the FrameRenderer interface.
type renderer struct {
	mu *sync.Mutex

	backend FrameBackend
	camera  camera.OrbitCamera
	cache   pipeline.PipelineCache
	log     *zap.Logger

	shaderID, shaderSource string
	pipelineOptions        []pipeline.PipelineBuilderOption
	clearColor             wgpu.Color
	instances              []model.Instance

	cameraBinding  bind_group_provider.BindGroupProvider
	instanceBuffer *wgpu.Buffer
	surfaceFormat  wgpu.TextureFormat
	width, height  int

	// draws is reused across frames to avoid reallocating the draw list
	draws []DrawCall
}

// FrameRenderer orchestrates one frame at a time: camera update and uniform upload, acquire,
// clear, one draw per mesh in loader order, submit and present.
type FrameRenderer interface {
	// RenderFrame renders the model once. Transient surface failures skip the frame and return a
	// nil error; a non-nil error is fatal and the render loop must stop.
	//
	// Parameters:
	//   - m: the model to draw
	//
	// Returns:
	//   - FrameResult: whether the frame was presented or skipped
	//   - error: a fatal error, or nil
	RenderFrame(m model.Model) (FrameResult, error)

	// Resize reconfigures the surface for a new size. Sizes with a zero dimension are ignored.
	// Compiled pipelines are invalidated if the surface format changed.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Pipelines returns the cache of compiled pipelines.
	//
	// Returns:
	//   - pipeline.PipelineCache: the pipeline cache
	Pipelines() pipeline.PipelineCache

	// Camera returns the camera whose uniform is uploaded each frame.
	//
	// Returns:
	//   - camera.OrbitCamera: the camera
	Camera() camera.OrbitCamera

	// SetClearColor sets the background color used when clearing each frame.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c wgpu.Color)

	// Release releases the camera binding, the instance buffer and every cached pipeline.
	Release()
}

var _ FrameRenderer = &renderer{}

// NewFrameRenderer creates a FrameRenderer drawing through backend from cam's point of view.
// It allocates the camera uniform binding and the shared instance buffer up front.
//
// Parameters:
//   - backend: the graphics backend
//   - cam: the camera
//   - options: variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - FrameRenderer: the new renderer
//   - error: an error if the camera binding or instance buffer could not be created
func NewFrameRenderer(backend FrameBackend, cam camera.OrbitCamera, options ...RendererBuilderOption) (FrameRenderer, error) {
	r := &renderer{
		mu:           &sync.Mutex{},
		backend:      backend,
		camera:       cam,
		cache:        pipeline.NewPipelineCache(),
		log:          logger.Named("renderer"),
		shaderID:     TextureShaderID,
		shaderSource: TextureShaderSource,
		clearColor:   wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		instances:    []model.Instance{model.IdentityInstance()},
	}
	for _, opt := range options {
		opt(r)
	}

	var u camera.GPUCameraUniform
	if err := checkShader(r.shaderSource, uint64(u.Size())); err != nil {
		return nil, fmt.Errorf("shader %q: %w", r.shaderID, err)
	}

	binding, err := backend.CreateUniformBinding("Camera", uint64(u.Size()))
	if err != nil {
		return nil, fmt.Errorf("creating camera binding: %w", err)
	}
	r.cameraBinding = binding

	buf, err := backend.CreateVertexBuffer("Instance Buffer", model.MarshalInstances(r.instances))
	if err != nil {
		binding.Release()
		return nil, fmt.Errorf("creating instance buffer: %w", err)
	}
	r.instanceBuffer = buf
	r.surfaceFormat = backend.SurfaceFormat()

	return r, nil
}

// checkShader verifies source binds the material at group 0 and the camera at group 1 and reads
// the vertex and instance buffers the way the loader packs them.
func checkShader(source string, cameraSize uint64) error {
	var factor model.GPUMaterialFactor
	refl := shader.Reflect(source)

	if err := refl.Check("vs_main", "fs_main",
		shader.Requirement{Group: 0, Binding: 0, Kind: shader.ResourceTexture2D},
		shader.Requirement{Group: 0, Binding: 1, Kind: shader.ResourceSampler},
		shader.Requirement{Group: 0, Binding: 2, Kind: shader.ResourceUniform, Size: uint64(factor.Size())},
		shader.Requirement{Group: 1, Binding: 0, Kind: shader.ResourceUniform, Size: cameraSize},
	); err != nil {
		return err
	}
	return refl.CheckVertexInputs(model.VertexBufferLayout(), model.InstanceBufferLayout())
}

func (r *renderer) RenderFrame(m model.Model) (FrameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.camera.Update()
	u := r.camera.Uniform()
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: r.cameraBinding,
		Binding:  0,
		Data:     u.Marshal(),
	}})

	// pipelines resolve before acquire so a compile failure never leaves a frame half-recorded
	if err := r.prepareDraws(m); err != nil {
		return FrameSkipped, err
	}

	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		return r.handleAcquireError(err)
	}

	for _, call := range r.draws {
		r.backend.Draw(call)
	}

	if err := r.backend.EndFrame(); err != nil {
		return r.handleAcquireError(err)
	}
	r.backend.Present()
	return FramePresented, nil
}

func (r *renderer) prepareDraws(m model.Model) error {
	r.draws = r.draws[:0]
	if m == nil {
		return nil
	}

	for _, mesh := range m.Meshes() {
		mat, err := m.MaterialFor(mesh)
		if err != nil {
			return err
		}
		if mat.Provider == nil || mesh.Provider == nil {
			return fmt.Errorf("mesh %q or its material has no GPU resources", mesh.Name)
		}

		key := pipeline.PipelineKey{
			ShaderID:           r.shaderID,
			VertexLayoutID:     model.VertexLayoutID,
			BindGroupLayoutIDs: []string{mat.LayoutID(), r.cameraBinding.LayoutID()},
		}
		handle, err := r.cache.GetOrCreate(key, func() (pipeline.Handle, error) {
			r.log.Debug("compiling pipeline", zap.Stringer("key", key))
			options := append([]pipeline.PipelineBuilderOption{
				pipeline.WithVertexLayouts(model.VertexBufferLayout(), model.InstanceBufferLayout()),
			}, r.pipelineOptions...)
			p := pipeline.NewPipeline(key, r.shaderSource, options...)
			return r.backend.CreateRenderPipeline(p, []*wgpu.BindGroupLayout{
				mat.Provider.BindGroupLayout(),
				r.cameraBinding.BindGroupLayout(),
			})
		})
		if err != nil {
			return fmt.Errorf("resolving pipeline for mesh %q: %w", mesh.Name, err)
		}

		r.draws = append(r.draws, DrawCall{
			Pipeline:      handle,
			Mesh:          mesh.Provider,
			Instances:     r.instanceBuffer,
			InstanceCount: uint32(len(r.instances)),
			BindGroups:    []*wgpu.BindGroup{mat.Provider.BindGroup(), r.cameraBinding.BindGroup()},
		})
	}
	return nil
}

func (r *renderer) handleAcquireError(err error) (FrameResult, error) {
	ae := ClassifyAcquireError(err)
	switch ae.Status {
	case AcquireStatusLost, AcquireStatusOutdated:
		r.log.Info("surface needs reconfigure, skipping frame", zap.Stringer("status", ae.Status), zap.Error(ae.Err))
		r.reconfigure(r.width, r.height)
		return FrameSkipped, nil
	case AcquireStatusTimeout:
		r.log.Warn("surface acquire timed out, skipping frame", zap.Error(ae.Err))
		return FrameSkipped, nil
	default:
		r.log.Error("fatal frame error", zap.Stringer("status", ae.Status), zap.Error(ae.Err))
		return FrameSkipped, ae
	}
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.reconfigure(width, height)
}

// reconfigure must be called with r.mu held.
func (r *renderer) reconfigure(width, height int) {
	if width > 0 && height > 0 {
		r.backend.Reconfigure(width, height)
	}

	if format := r.backend.SurfaceFormat(); format != r.surfaceFormat {
		r.log.Info("surface format changed, invalidating pipelines",
			zap.Any("from", r.surfaceFormat), zap.Any("to", format))
		r.cache.InvalidateAll()
		r.surfaceFormat = format
	}
}

func (r *renderer) Pipelines() pipeline.PipelineCache {
	return r.cache
}

func (r *renderer) Camera() camera.OrbitCamera {
	return r.camera
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.InvalidateAll()
	if r.cameraBinding != nil {
		r.cameraBinding.Release()
		r.cameraBinding = nil
	}
	if r.instanceBuffer != nil {
		r.instanceBuffer.Release()
		r.instanceBuffer = nil
	}
}
