package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrContractMismatch is wrapped by every error returned from Check and CheckVertexInputs.
var ErrContractMismatch = errors.New("shader does not match the binding contract")

// ResourceKind is the kind of resource a binding slot is expected to hold.
type ResourceKind int

const (
	// ResourceUniform is a var<uniform> buffer.
	ResourceUniform ResourceKind = iota

	// ResourceTexture2D is a sampled 2D texture.
	ResourceTexture2D

	// ResourceSampler is a filtering sampler.
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUniform:
		return "uniform"
	case ResourceTexture2D:
		return "texture_2d"
	case ResourceSampler:
		return "sampler"
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// Binding is one @group(N) @binding(M) declaration.
type Binding struct {
	// Name is the WGSL variable name
	Name string
	// Type is the declared WGSL type, e.g. "texture_2d<f32>" or "CameraUniform"
	Type string
	// Entry is the layout entry derived from the declaration. Visibility is not set.
	Entry wgpu.BindGroupLayoutEntry
}

// Requirement is a resource the host code binds at a fixed slot.
type Requirement struct {
	Group   int
	Binding int
	Kind    ResourceKind
	// Size is the byte size the host uploads for uniform requirements. 0 skips the size check.
	Size uint64
}

// Reflection is what could be read back out of a WGSL module without compiling it.
type Reflection struct {
	// VertexEntry and FragmentEntry are the first @vertex and @fragment function names
	VertexEntry, FragmentEntry string

	// VertexInputs holds one layout per pure vertex input struct, in source order
	VertexInputs []wgpu.VertexBufferLayout

	// Bindings is keyed by group then binding index
	Bindings map[int]map[int]Binding

	structSizes map[string]wgslTypeLayout
}

// Reflect parses WGSL source. Comments are ignored. It never fails; declarations it cannot
// understand are left out of the result and surface later as Check errors.
//
// Parameters:
//   - source: the complete WGSL module
//
// Returns:
//   - *Reflection: the reflected entry points, vertex inputs and bindings
func Reflect(source string) *Reflection {
	clean := stripComments(source)
	sizes := computeStructSizes(parseStructBlocks(clean))

	return &Reflection{
		VertexEntry:   parseEntryPoint(clean, vertexEntryRegex),
		FragmentEntry: parseEntryPoint(clean, fragmentEntryRegex),
		VertexInputs:  parseVertexInputs(clean),
		Bindings:      parseBindings(clean, sizes),
		structSizes:   sizes,
	}
}

// StructSize returns the host-shareable size of a struct declared in the module.
//
// Parameters:
//   - name: the struct name
//
// Returns:
//   - uint64: the size in bytes
//   - bool: false if the struct is unknown or its layout could not be resolved
func (r *Reflection) StructSize(name string) (uint64, bool) {
	layout, ok := r.structSizes[name]
	return layout.size, ok
}

// Binding looks up one declaration.
//
// Parameters:
//   - group: the bind group index
//   - binding: the binding index within the group
//
// Returns:
//   - Binding: the declaration
//   - bool: false if nothing is declared there
func (r *Reflection) Binding(group, binding int) (Binding, bool) {
	b, ok := r.Bindings[group][binding]
	return b, ok
}

// Check verifies the entry points exist and every requirement is declared with the right kind.
// Uniform requirements with a Size must match the declared struct size exactly.
//
// Parameters:
//   - vertexEntry: the vertex entry point the pipeline will use
//   - fragmentEntry: the fragment entry point the pipeline will use
//   - reqs: the bindings the host supplies
//
// Returns:
//   - error: every mismatch joined together, each wrapping ErrContractMismatch, or nil
func (r *Reflection) Check(vertexEntry, fragmentEntry string, reqs ...Requirement) error {
	var errs []error
	if r.VertexEntry != vertexEntry {
		errs = append(errs, fmt.Errorf("%w: vertex entry point %q not found", ErrContractMismatch, vertexEntry))
	}
	if r.FragmentEntry != fragmentEntry {
		errs = append(errs, fmt.Errorf("%w: fragment entry point %q not found", ErrContractMismatch, fragmentEntry))
	}

	for _, req := range reqs {
		b, ok := r.Binding(req.Group, req.Binding)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: @group(%d) @binding(%d) not declared",
				ErrContractMismatch, req.Group, req.Binding))
			continue
		}
		if err := checkBinding(req, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkBinding(req Requirement, b Binding) error {
	mismatch := func(format string, args ...any) error {
		prefix := fmt.Sprintf("@group(%d) @binding(%d) %s: ", req.Group, req.Binding, b.Name)
		return fmt.Errorf("%w: %s", ErrContractMismatch, prefix+fmt.Sprintf(format, args...))
	}

	switch req.Kind {
	case ResourceUniform:
		if b.Entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
			return mismatch("want %s, declared %s", req.Kind, b.Type)
		}
		if req.Size > 0 && b.Entry.Buffer.MinBindingSize != req.Size {
			return mismatch("%s is %d bytes, host uploads %d", b.Type, b.Entry.Buffer.MinBindingSize, req.Size)
		}
	case ResourceTexture2D:
		if b.Entry.Texture.ViewDimension != wgpu.TextureViewDimension2D || b.Entry.Texture.Multisampled ||
			b.Entry.Texture.SampleType != wgpu.TextureSampleTypeFloat {
			return mismatch("want %s, declared %s", req.Kind, b.Type)
		}
	case ResourceSampler:
		if b.Entry.Sampler.Type != wgpu.SamplerBindingTypeFiltering {
			return mismatch("want %s, declared %s", req.Kind, b.Type)
		}
	}
	return nil
}

// CheckVertexInputs verifies that for every host buffer layout the module declares a vertex input
// struct with the same stride and the same format at each location and offset.
//
// Parameters:
//   - layouts: the vertex buffer layouts the host binds, in slot order
//
// Returns:
//   - error: every unmatched slot joined together, each wrapping ErrContractMismatch, or nil
func (r *Reflection) CheckVertexInputs(layouts ...wgpu.VertexBufferLayout) error {
	var errs []error
	for slot, want := range layouts {
		if !r.hasVertexInput(want) {
			errs = append(errs, fmt.Errorf("%w: no vertex input struct matches buffer slot %d (stride %d, %d attributes)",
				ErrContractMismatch, slot, want.ArrayStride, len(want.Attributes)))
		}
	}
	return errors.Join(errs...)
}

func (r *Reflection) hasVertexInput(want wgpu.VertexBufferLayout) bool {
	for _, got := range r.VertexInputs {
		if sameAttributes(got, want) {
			return true
		}
	}
	return false
}

// sameAttributes ignores step mode, which WGSL does not declare.
func sameAttributes(a, b wgpu.VertexBufferLayout) bool {
	if a.ArrayStride != b.ArrayStride || len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for i := range a.Attributes {
		if a.Attributes[i] != b.Attributes[i] {
			return false
		}
	}
	return true
}
