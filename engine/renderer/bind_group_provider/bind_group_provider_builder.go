package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithOwnedBindGroupLayout sets a bind group layout that the provider releases with its other resources.
//
// Parameters:
//   - id: the layout identifier used in pipeline keys
//   - bgl: the bind group layout
//
// Returns:
//   - BindGroupProviderOption: a function that sets the layout for this provider
func WithOwnedBindGroupLayout(id string, bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.layoutID = id
		p.bindGroupLayout = bgl
		p.ownsLayout = true
	}
}

// WithSharedBindGroupLayout sets a bind group layout owned by someone else, such as the material layout
// every material of a model binds against.
//
// Parameters:
//   - id: the layout identifier used in pipeline keys
//   - bgl: the bind group layout
//
// Returns:
//   - BindGroupProviderOption: a function that sets the layout for this provider
func WithSharedBindGroupLayout(id string, bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.layoutID = id
		p.bindGroupLayout = bgl
		p.ownsLayout = false
	}
}

// WithIndexCount sets the index count of a mesh provider.
//
// Parameters:
//   - count: the number of indices
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count for this provider
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
