package bind_group_provider

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// slot is whatever is bound at one binding index. At most one of buffer or texture+view or
// sampler is set in practice, but nothing depends on it.
type slot struct {
	buffer  *wgpu.Buffer
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

func (s *slot) release() {
	// views before the texture they were created from
	if s.view != nil {
		s.view.Release()
	}
	if s.texture != nil {
		s.texture.Release()
	}
	if s.sampler != nil {
		s.sampler.Release()
	}
	if s.buffer != nil {
		s.buffer.Release()
	}
	*s = slot{}
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label    string
	layoutID string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	ownsLayout      bool
	slots           map[int]*slot

	// mesh providers only
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider holds the GPU resources behind one bindable unit: a material's texture, sampler
// and factor uniform, the camera's uniform buffer, or a mesh's vertex and index buffers.
//
// Usage pattern:
//  1. The GraphicsContext creates the GPU resources and stores them on a new provider
//  2. The provider is attached to a Mesh, Material or the FrameRenderer's camera binding
//  3. The FrameRenderer reads BindGroup/VertexBuffer/IndexBuffer when recording draws
//  4. Release is called once when the owning Model or renderer is torn down
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider. A shared bind group layout is left
	// for its owner to release. Calling it again is a no-op.
	Release()

	// Label returns the debug label.
	Label() string

	// LayoutID returns the identifier of the bind group layout, used to key compiled pipelines.
	// Providers sharing a layout share its ID.
	//
	// Returns:
	//   - string: the layout identifier
	LayoutID() string

	// BindGroup returns the bind group, or nil before the GraphicsContext created it.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created against, or nil.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at binding, or nil. Per-frame BufferWrites resolve their target here.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh u32 index buffer, or nil.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn for a mesh.
	IndexCount() int

	// SetBindGroup stores the bind group created over this provider's resources.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores a buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture stores a texture and its view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture
	//   - tv: the view over tex
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// SetSampler stores a sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// SetMeshBuffers stores the vertex and index buffers of a mesh and its index count.
	//
	// Parameters:
	//   - vertex: the vertex buffer
	//   - index: the index buffer
	//   - count: the index count
	SetMeshBuffers(vertex, index *wgpu.Buffer, count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider. GPU resources are attached afterwards with the
// Set* methods.
//
// Parameters:
//   - label: the debug label for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label: label,
		slots: make(map[int]*slot),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// at returns the slot for binding, creating it on first use.
func (p *bindGroupProvider) at(binding int) *slot {
	s, ok := p.slots[binding]
	if !ok {
		s = &slot{}
		p.slots[binding] = s
	}
	return s
}

func (p *bindGroupProvider) Label() string                         { return p.label }
func (p *bindGroupProvider) LayoutID() string                      { return p.layoutID }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup            { return p.bindGroup }
func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.bindGroupLayout }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer            { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer             { return p.indexBuffer }
func (p *bindGroupProvider) IndexCount() int                       { return p.indexCount }

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	if s, ok := p.slots[binding]; ok {
		return s.buffer
	}
	return nil
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	if s, ok := p.slots[binding]; ok {
		return s.view
	}
	return nil
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	if s, ok := p.slots[binding]; ok {
		return s.sampler
	}
	return nil
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.at(binding).buffer = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	s := p.at(binding)
	s.texture, s.view = tex, tv
}

func (p *bindGroupProvider) SetSampler(binding int, sampler *wgpu.Sampler) {
	p.at(binding).sampler = sampler
}

func (p *bindGroupProvider) SetMeshBuffers(vertex, index *wgpu.Buffer, count int) {
	p.vertexBuffer, p.indexBuffer, p.indexCount = vertex, index, count
}

func (p *bindGroupProvider) Release() {
	// the bind group references the slot resources, so it goes first
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}

	bindings := make([]int, 0, len(p.slots))
	for b := range p.slots {
		bindings = append(bindings, b)
	}
	slices.Sort(bindings)
	for _, b := range bindings {
		p.slots[b].release()
		delete(p.slots, b)
	}

	for _, buf := range []**wgpu.Buffer{&p.vertexBuffer, &p.indexBuffer} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}

	if p.ownsLayout && p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
	}
	p.bindGroupLayout = nil
}
