package renderer

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/sloth/common"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sloth/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// MaterialLayoutID identifies the shared material bind group layout (texture, sampler, factor).
const MaterialLayoutID = "material(texture,sampler,factor)"

// UniformLayoutID identifies bind group layouts holding a single uniform buffer at binding 0.
const UniformLayoutID = "uniform(vertex|fragment)"

type graphicsContextImpl struct {
	mu  *sync.Mutex
	log *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width, height int

	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode    wgpu.PresentMode
	sampleCount    MSAASampleCount
	forceFallback  bool
	materialLayout *wgpu.BindGroupLayout

	// Frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// GraphicsContext owns the wgpu instance, device, queue and presentation surface. It records the
// per-frame render pass for a FrameRenderer and uploads mesh and material resources for the loader.
type GraphicsContext interface {
	FrameBackend

	// Device returns the logical device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device's submission queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// CreateMeshBuffers uploads vertex and index data into a new mesh provider.
	//
	// Parameters:
	//   - label: the debug label
	//   - vertexData: marshalled vertices
	//   - indexData: marshalled u32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider owning both buffers
	//   - error: an error if a buffer could not be created
	CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount int) (bind_group_provider.BindGroupProvider, error)

	// CreateMaterialBinding uploads a texture, creates its sampler and factor uniform, and binds all
	// three against the shared material layout.
	//
	// Parameters:
	//   - label: the debug label
	//   - texture: the RGBA8 pixels of the base-colour texture
	//   - sampler: the sampler configuration
	//   - factor: the diffuse factor uniform
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the material provider
	//   - error: an error if any resource could not be created
	CreateMaterialBinding(label string, texture common.TextureStagingData, sampler common.SamplerStagingData, factor model.GPUMaterialFactor) (bind_group_provider.BindGroupProvider, error)

	// Release releases the frame resources, device, surface and instance.
	Release()
}

var _ GraphicsContext = &graphicsContextImpl{}

// NewGraphicsContext creates the wgpu instance, surface, adapter and device for the given surface.
// The surface is not configured until the first Reconfigure.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, usually from the window
//   - options: variadic list of GraphicsContextOption functions
//
// Returns:
//   - GraphicsContext: the new context
//   - error: an error if no adapter or device could be obtained
func NewGraphicsContext(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...GraphicsContextOption) (GraphicsContext, error) {
	runtime.LockOSThread()
	g := &graphicsContextImpl{
		mu:          &sync.Mutex{},
		log:         logger.Named("graphics"),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAAOff,
	}
	for _, opt := range options {
		opt(g)
	}

	g.instance = wgpu.CreateInstance(nil)
	g.surface = g.instance.CreateSurface(surfaceDescriptor)

	a, err := g.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: g.forceFallback,
		CompatibleSurface:    g.surface,
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	g.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	g.device = d
	g.queue = d.GetQueue()

	var factor model.GPUMaterialFactor
	g.materialLayout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Material Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(factor.Size()),
				},
			},
		},
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("creating material layout: %w", err)
	}

	g.log.Info("graphics context ready", zap.Uint32("msaa", uint32(g.sampleCount)))
	return g, nil
}

// preferredSurfaceFormat picks the first sRGB format the surface supports, else the first format.
func preferredSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, errors.New("surface reports no supported formats")
	}
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f, nil
		}
	}
	return formats[0], nil
}

func (g *graphicsContextImpl) SurfaceFormat() wgpu.TextureFormat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surfaceFormat
}

func (g *graphicsContextImpl) Reconfigure(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := g.surface.GetCapabilities(g.adapter)
	format, err := preferredSurfaceFormat(capabilities.Formats)
	if err != nil {
		g.log.Error("cannot configure surface", zap.Error(err))
		return
	}
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	g.surfaceFormat = format
	g.width, g.height = width, height
	g.surface.Configure(g.adapter, g.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: g.presentMode,
		AlphaMode:   alphaMode,
	})

	if err := g.createAttachments(); err != nil {
		g.log.Error("failed to recreate render attachments", zap.Error(err))
	}
}

// createAttachments rebuilds the depth (and MSAA) textures for the current size. Must be called
// with g.mu held.
func (g *graphicsContextImpl) createAttachments() error {
	g.releaseAttachments()

	count := uint32(g.sampleCount)
	size := wgpu.Extent3D{
		Width:              uint32(g.width),
		Height:             uint32(g.height),
		DepthOrArrayLayers: 1,
	}

	if count > 1 {
		tex, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        g.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return err
		}
		g.msaaTexture, g.msaaTextureView = tex, view
	}

	depth, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	depthView, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		return err
	}
	g.depthTexture, g.depthTextureView = depth, depthView

	// With MSAA the pass draws into the MSAA view and resolves into the swapchain view per frame.
	storeOp := wgpu.StoreOpStore
	if count > 1 {
		storeOp = wgpu.StoreOpDiscard
	}
	g.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    g.msaaTextureView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            g.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (g *graphicsContextImpl) releaseAttachments() {
	if g.msaaTextureView != nil {
		g.msaaTextureView.Release()
		g.msaaTextureView = nil
	}
	if g.msaaTexture != nil {
		g.msaaTexture.Release()
		g.msaaTexture = nil
	}
	if g.depthTextureView != nil {
		g.depthTextureView.Release()
		g.depthTextureView = nil
	}
	if g.depthTexture != nil {
		g.depthTexture.Release()
		g.depthTexture = nil
	}
}

func (g *graphicsContextImpl) CreateUniformBinding(label string, size uint64) (bind_group_provider.BindGroupProvider, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	layout, err := g.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label + " Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	provider := bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithOwnedBindGroupLayout(UniformLayoutID, layout))

	buf, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBuffer(0, buf)

	bindGroup, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBindGroup(bindGroup)
	return provider, nil
}

// createInitBuffer must be called with g.mu held.
func (g *graphicsContextImpl) createInitBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	g.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (g *graphicsContextImpl) CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(data) == 0 {
		return nil, errors.New("vertex buffer data is empty")
	}
	return g.createInitBuffer(label, wgpu.BufferUsageVertex, data)
}

func (g *graphicsContextImpl) CreateMeshBuffers(label string, vertexData, indexData []byte, indexCount int) (bind_group_provider.BindGroupProvider, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(vertexData) == 0 || len(indexData) == 0 {
		return nil, fmt.Errorf("mesh %q has no vertex or index data", label)
	}

	vb, err := g.createInitBuffer(label+" Vertex Buffer", wgpu.BufferUsageVertex, vertexData)
	if err != nil {
		return nil, err
	}
	ib, err := g.createInitBuffer(label+" Index Buffer", wgpu.BufferUsageIndex, indexData)
	if err != nil {
		vb.Release()
		return nil, err
	}

	provider := bind_group_provider.NewBindGroupProvider(label)
	provider.SetMeshBuffers(vb, ib, indexCount)
	return provider, nil
}

func (g *graphicsContextImpl) CreateMaterialBinding(label string, texture common.TextureStagingData, sampler common.SamplerStagingData, factor model.GPUMaterialFactor) (bind_group_provider.BindGroupProvider, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if texture.Width == 0 || texture.Height == 0 || len(texture.Pixels) < int(texture.Width*texture.Height*4) {
		return nil, fmt.Errorf("material %q has an empty or truncated texture", label)
	}

	provider := bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithSharedBindGroupLayout(MaterialLayoutID, g.materialLayout))

	size := wgpu.Extent3D{Width: texture.Width, Height: texture.Height, DepthOrArrayLayers: 1}
	tex, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	g.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		texture.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  texture.Width * 4,
			RowsPerImage: texture.Height,
		},
		&size,
	)
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	provider.SetTexture(0, tex, view)

	samp, err := g.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(sampler.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(sampler.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(sampler.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(sampler.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetSampler(1, samp)

	buf, err := g.createInitBuffer(label+" Factor Buffer", wgpu.BufferUsageUniform, factor.Marshal())
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBuffer(2, buf)

	bindGroup, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: g.materialLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: samp},
			{Binding: 2, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBindGroup(bindGroup)
	return provider, nil
}

func (g *graphicsContextImpl) CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (pipeline.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.surfaceFormat == wgpu.TextureFormatUndefined {
		return nil, errors.New("surface must be configured before creating pipelines")
	}
	key := p.Key().String()

	module, err := g.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.Key().ShaderID,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.ShaderSource(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compiling shader %q: %w", p.Key().ShaderID, err)
	}
	defer module.Release()

	pipelineLayout, err := g.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	depthCompare := p.DepthCompare()
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := g.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  key + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    g.surfaceFormat,
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(g.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating render pipeline %q: %w", key, err)
	}
	return created, nil
}

func (g *graphicsContextImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, w := range writes {
		if w.Provider == nil {
			continue
		}
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		g.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (g *graphicsContextImpl) BeginFrame(clear wgpu.Color) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if g.renderPassDescriptor == nil {
		return fmt.Errorf("surface not configured: %w", ErrSurfaceOutdated)
	}

	surfaceTexture, err := g.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	if nullTexture(surfaceTexture) {
		// lost, outdated and timed-out acquisitions all look like this; reconfiguring covers each
		return fmt.Errorf("surface returned no texture: %w", ErrSurfaceOutdated)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &g.renderPassDescriptor.ColorAttachments[0]
	if g.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = clear
	pass := encoder.BeginRenderPass(g.renderPassDescriptor)

	g.frameEncoder = encoder
	g.framePass = pass
	g.frameSurface = surfaceTexture
	g.frameView = view
	return nil
}

func (g *graphicsContextImpl) Draw(call DrawCall) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.framePass == nil || call.Mesh == nil {
		return
	}
	renderPipeline, ok := call.Pipeline.(*wgpu.RenderPipeline)
	if !ok || renderPipeline == nil {
		g.log.Warn("skipping draw with foreign pipeline handle", zap.String("mesh", call.Mesh.Label()))
		return
	}

	g.framePass.SetPipeline(renderPipeline)
	for i, bg := range call.BindGroups {
		g.framePass.SetBindGroup(uint32(i), bg, nil)
	}
	g.framePass.SetVertexBuffer(0, call.Mesh.VertexBuffer(), 0, wgpu.WholeSize)
	if call.Instances != nil {
		g.framePass.SetVertexBuffer(1, call.Instances, 0, wgpu.WholeSize)
	}
	g.framePass.SetIndexBuffer(call.Mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	g.framePass.DrawIndexed(uint32(call.Mesh.IndexCount()), call.InstanceCount, 0, 0, 0)
}

func (g *graphicsContextImpl) EndFrame() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.framePass == nil {
		return errors.New("EndFrame called without BeginFrame")
	}
	g.framePass.End()
	g.framePass.Release()
	g.framePass = nil

	commandBuffer, err := g.frameEncoder.Finish(nil)
	g.frameEncoder.Release()
	g.frameEncoder = nil
	if err != nil {
		g.releaseFrame()
		return fmt.Errorf("finishing command buffer: %w", err)
	}

	g.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (g *graphicsContextImpl) Present() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frameSurface == nil {
		return
	}
	g.surface.Present()
	g.releaseFrame()
}

// releaseFrame must be called with g.mu held.
func (g *graphicsContextImpl) releaseFrame() {
	if g.frameView != nil {
		g.frameView.Release()
		g.frameView = nil
	}
	if g.frameSurface != nil {
		g.frameSurface.Release()
		g.frameSurface = nil
	}
}

func (g *graphicsContextImpl) Device() *wgpu.Device {
	return g.device
}

func (g *graphicsContextImpl) Queue() *wgpu.Queue {
	return g.queue
}

func (g *graphicsContextImpl) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.releaseFrame()
	g.releaseAttachments()
	if g.materialLayout != nil {
		g.materialLayout.Release()
		g.materialLayout = nil
	}
	if g.queue != nil {
		g.queue.Release()
		g.queue = nil
	}
	if g.device != nil {
		g.device.Release()
		g.device = nil
	}
	if g.adapter != nil {
		g.adapter.Release()
		g.adapter = nil
	}
	if g.surface != nil {
		g.surface.Release()
		g.surface = nil
	}
	if g.instance != nil {
		g.instance.Release()
		g.instance = nil
	}
}

// nullTexture reports whether t wraps no native texture. Surface.GetCurrentTexture does not return
// the surface status, so a failed acquisition comes back as a Texture with a null handle.
func nullTexture(t *wgpu.Texture) bool {
	if t == nil {
		return true
	}
	ref := reflect.ValueOf(t).Elem().FieldByName("ref")
	return ref.IsValid() && ref.Kind() == reflect.Pointer && ref.IsNil()
}
