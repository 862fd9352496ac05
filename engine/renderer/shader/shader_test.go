package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedSource = `
// camera
struct CameraUniform {
    view_pos: vec4<f32>,
    view_proj: mat4x4<f32>,
};

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec3<f32>,
    @location(2) tex_coords: vec2<f32>,
    @location(3) normal: vec3<f32>,
};

struct InstanceInput {
    @location(5) model_matrix_0: vec4<f32>,
    @location(6) model_matrix_1: vec4<f32>,
    @location(7) model_matrix_2: vec4<f32>,
    @location(8) model_matrix_3: vec4<f32>,
};

struct MaterialFactor {
    diffuse: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
};

@group(0) @binding(0) var t_diffuse: texture_2d<f32>;
@group(0) @binding(1) var s_diffuse: sampler;
@group(0) @binding(2) var<uniform> material: MaterialFactor;
/* @group(3) @binding(0) var<uniform> unused: MaterialFactor; */
@group(1) @binding(0) var<uniform> camera: CameraUniform;

@vertex
fn vs_main(vertex: VertexInput, instance: InstanceInput) -> VertexOutput {
    var out: VertexOutput;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, s_diffuse, in.tex_coords) * material.diffuse;
}
`

var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: 44,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
	},
}

var instanceLayout = wgpu.VertexBufferLayout{
	ArrayStride: 64,
	StepMode:    wgpu.VertexStepModeInstance,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
	},
}

func texturedRequirements() []Requirement {
	return []Requirement{
		{Group: 0, Binding: 0, Kind: ResourceTexture2D},
		{Group: 0, Binding: 1, Kind: ResourceSampler},
		{Group: 0, Binding: 2, Kind: ResourceUniform, Size: 16},
		{Group: 1, Binding: 0, Kind: ResourceUniform, Size: 80},
	}
}

func TestReflectEntryPointsAndStructs(t *testing.T) {
	r := Reflect(texturedSource)

	assert.Equal(t, "vs_main", r.VertexEntry)
	assert.Equal(t, "fs_main", r.FragmentEntry)

	size, ok := r.StructSize("CameraUniform")
	require.True(t, ok)
	assert.Equal(t, uint64(80), size)

	size, ok = r.StructSize("MaterialFactor")
	require.True(t, ok)
	assert.Equal(t, uint64(16), size)

	_, ok = r.StructSize("Missing")
	assert.False(t, ok)
}

func TestReflectBindings(t *testing.T) {
	r := Reflect(texturedSource)

	require.Len(t, r.Bindings, 2, "commented-out declarations are ignored")

	tex, ok := r.Binding(0, 0)
	require.True(t, ok)
	assert.Equal(t, "t_diffuse", tex.Name)
	assert.Equal(t, wgpu.TextureViewDimension2D, tex.Entry.Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, tex.Entry.Texture.SampleType)

	smp, ok := r.Binding(0, 1)
	require.True(t, ok)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, smp.Entry.Sampler.Type)

	cam, ok := r.Binding(1, 0)
	require.True(t, ok)
	assert.Equal(t, "CameraUniform", cam.Type)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cam.Entry.Buffer.Type)
	assert.Equal(t, uint64(80), cam.Entry.Buffer.MinBindingSize)
	assert.Equal(t, uint32(0), cam.Entry.Binding)
}

func TestReflectVertexInputs(t *testing.T) {
	r := Reflect(texturedSource)

	require.Len(t, r.VertexInputs, 2, "the builtin-carrying output struct is not an input")
	assert.Equal(t, vertexLayout.ArrayStride, r.VertexInputs[0].ArrayStride)
	assert.Equal(t, vertexLayout.Attributes, r.VertexInputs[0].Attributes)
	assert.Equal(t, instanceLayout.Attributes, r.VertexInputs[1].Attributes)
}

func TestCheckAcceptsMatchingShader(t *testing.T) {
	r := Reflect(texturedSource)

	assert.NoError(t, r.Check("vs_main", "fs_main", texturedRequirements()...))
	assert.NoError(t, r.CheckVertexInputs(vertexLayout, instanceLayout))
}

func TestCheckReportsMismatches(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		vertex  string
		message string
	}{
		{
			name:    "missing entry point",
			source:  texturedSource,
			vertex:  "main",
			message: `vertex entry point "main"`,
		},
		{
			name:    "missing binding",
			source:  `@vertex fn vs_main() {} @fragment fn fs_main() {}`,
			vertex:  "vs_main",
			message: "@group(1) @binding(0) not declared",
		},
		{
			name: "uniform too small",
			source: `struct CameraUniform { view_proj: mat4x4<f32> };
@group(0) @binding(0) var t: texture_2d<f32>;
@group(0) @binding(1) var s: sampler;
@group(0) @binding(2) var<uniform> m: vec4<f32>;
@group(1) @binding(0) var<uniform> camera: CameraUniform;
@vertex fn vs_main() {} @fragment fn fs_main() {}`,
			vertex:  "vs_main",
			message: "is 64 bytes, host uploads 80",
		},
		{
			name: "wrong resource kind",
			source: `struct CameraUniform { view_pos: vec4<f32>, view_proj: mat4x4<f32> };
@group(0) @binding(0) var t: texture_depth_2d;
@group(0) @binding(1) var s: sampler_comparison;
@group(0) @binding(2) var<uniform> m: vec4<f32>;
@group(1) @binding(0) var<uniform> camera: CameraUniform;
@vertex fn vs_main() {} @fragment fn fs_main() {}`,
			vertex:  "vs_main",
			message: "want texture_2d, declared texture_depth_2d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reflect(tt.source).Check(tt.vertex, "fs_main", texturedRequirements()...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContractMismatch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCheckVertexInputsReportsMismatch(t *testing.T) {
	source := `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
};`
	err := Reflect(source).CheckVertexInputs(vertexLayout, instanceLayout)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractMismatch)
	assert.Contains(t, err.Error(), "buffer slot 0")
	assert.Contains(t, err.Error(), "buffer slot 1")
}

func TestResolveTypeLayoutArrays(t *testing.T) {
	known := map[string]wgslTypeLayout{}

	layout, ok := resolveTypeLayout("array<vec3<f32>, 4>", known)
	require.True(t, ok)
	assert.Equal(t, wgslTypeLayout{size: 64, align: 16}, layout)

	layout, ok = resolveTypeLayout("array<f32>", known)
	require.True(t, ok)
	assert.Equal(t, uint64(4), layout.size)

	_, ok = resolveTypeLayout("array<Nope, 2>", known)
	assert.False(t, ok)
}

func TestComputeStructSizesResolvesForwardReferences(t *testing.T) {
	structs := parseStructBlocks(`
struct Outer { inner: Inner, scale: f32 };
struct Inner { a: vec3<f32>, b: f32 };
`)
	sizes := computeStructSizes(structs)

	assert.Equal(t, uint64(16), sizes["Inner"].size)
	assert.Equal(t, uint64(32), sizes["Outer"].size)
}

func TestStripCommentsHandlesNesting(t *testing.T) {
	got := stripComments("a /* x /* y */ z */ b // tail\nc // end")
	assert.Equal(t, "a  b \nc ", got)
}

func TestPrimitiveLayout(t *testing.T) {
	tests := []struct {
		typeName string
		want     wgslTypeLayout
	}{
		{"f32", wgslTypeLayout{4, 4}},
		{"vec2f", wgslTypeLayout{8, 8}},
		{"vec3<f32>", wgslTypeLayout{12, 16}},
		{"vec4u", wgslTypeLayout{16, 16}},
		{"mat3x3<f32>", wgslTypeLayout{48, 16}},
		{"mat3x2f", wgslTypeLayout{24, 8}},
		{"mat4x4<f32>", wgslTypeLayout{64, 16}},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, ok := primitiveLayout(tt.typeName)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"vec5f", "vec2h", "mat4x4<f16>", "texture_2d<f32>"} {
		_, ok := primitiveLayout(bad)
		assert.False(t, ok, bad)
	}
}

func TestClassifyTextures(t *testing.T) {
	depth := classifyResource(0, "", "texture_depth_multisampled_2d")
	assert.Equal(t, wgpu.TextureSampleTypeDepth, depth.Texture.SampleType)
	assert.True(t, depth.Texture.Multisampled)
	assert.Equal(t, wgpu.TextureViewDimension2D, depth.Texture.ViewDimension)

	cube := classifyResource(3, "", "texture_cube<u32>")
	assert.Equal(t, wgpu.TextureViewDimensionCube, cube.Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeUint, cube.Texture.SampleType)
	assert.Equal(t, uint32(3), cube.Binding)

	storage := classifyResource(1, "storage, read_write", "array<f32>")
	assert.Equal(t, wgpu.BufferBindingTypeStorage, storage.Buffer.Type)
}
