package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/sloth/engine/camera"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sloth/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	released int
}

func (h *fakeHandle) Release() { h.released++ }

// fakeBackend records every call the renderer makes, in order.
type fakeBackend struct {
	format      wgpu.TextureFormat
	calls       []string
	beginErrs   []error
	pipelines   []*fakeHandle
	reconfigs   [][2]int
	draws       []DrawCall
	uniformSize uint64
	compiled    []pipeline.Pipeline
}

func (b *fakeBackend) SurfaceFormat() wgpu.TextureFormat { return b.format }

func (b *fakeBackend) Reconfigure(width, height int) {
	b.calls = append(b.calls, "reconfigure")
	b.reconfigs = append(b.reconfigs, [2]int{width, height})
}

func (b *fakeBackend) CreateUniformBinding(label string, size uint64) (bind_group_provider.BindGroupProvider, error) {
	b.uniformSize = size
	return bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithSharedBindGroupLayout("uniform", nil)), nil
}

func (b *fakeBackend) CreateVertexBuffer(string, []byte) (*wgpu.Buffer, error) {
	return nil, nil
}

func (b *fakeBackend) CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (pipeline.Handle, error) {
	b.calls = append(b.calls, "pipeline")
	b.compiled = append(b.compiled, p)
	h := &fakeHandle{}
	b.pipelines = append(b.pipelines, h)
	return h, nil
}

func (b *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.calls = append(b.calls, "write")
}

func (b *fakeBackend) BeginFrame(wgpu.Color) error {
	b.calls = append(b.calls, "begin")
	if len(b.beginErrs) > 0 {
		err := b.beginErrs[0]
		b.beginErrs = b.beginErrs[1:]
		return err
	}
	return nil
}

func (b *fakeBackend) Draw(call DrawCall) {
	b.calls = append(b.calls, "draw")
	b.draws = append(b.draws, call)
}

func (b *fakeBackend) EndFrame() error {
	b.calls = append(b.calls, "end")
	return nil
}

func (b *fakeBackend) Present() {
	b.calls = append(b.calls, "present")
}

func testModel(meshNames ...string) model.Model {
	mat := model.Material{
		Name:     "mat",
		Provider: bind_group_provider.NewBindGroupProvider("mat", bind_group_provider.WithSharedBindGroupLayout("material", nil)),
	}
	meshes := make([]model.Mesh, 0, len(meshNames))
	for _, name := range meshNames {
		meshes = append(meshes, model.Mesh{
			Name:     name,
			Provider: bind_group_provider.NewBindGroupProvider(name, bind_group_provider.WithIndexCount(3)),
		})
	}
	return model.NewModel(model.WithMeshes(meshes...), model.WithMaterials(mat))
}

func newTestRenderer(t *testing.T, backend *fakeBackend, options ...RendererBuilderOption) FrameRenderer {
	t.Helper()
	cam, err := camera.NewOrbitCamera()
	require.NoError(t, err)
	r, err := NewFrameRenderer(backend, cam, options...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestRenderFramePresentsAndDrawsInMeshOrder(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	res, err := r.RenderFrame(testModel("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, FramePresented, res)

	require.Len(t, backend.draws, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, backend.draws[i].Mesh.Label())
		assert.Equal(t, uint32(1), backend.draws[i].InstanceCount)
		assert.Len(t, backend.draws[i].BindGroups, 2)
	}
	assert.Equal(t, uint64(80), backend.uniformSize)
}

func TestRenderFrameWritesUniformBeforeAcquire(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	_, err := r.RenderFrame(testModel("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"write", "pipeline", "begin", "draw", "end", "present"}, backend.calls)
}

func TestRenderFrameDoesNotRebuildPipelinesAcrossFrames(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	m := testModel("a", "b")

	for i := 0; i < 5; i++ {
		_, err := r.RenderFrame(m)
		require.NoError(t, err)
	}
	assert.Len(t, backend.pipelines, 1)
	assert.Equal(t, 1, r.Pipelines().Len())
}

func TestRenderFrameLostIsNotFatal(t *testing.T) {
	backend := &fakeBackend{beginErrs: []error{ErrSurfaceLost}}
	r := newTestRenderer(t, backend, WithSurfaceSize(800, 600))

	res, err := r.RenderFrame(testModel("a"))
	require.NoError(t, err)
	assert.Equal(t, FrameSkipped, res)
	assert.Equal(t, [][2]int{{800, 600}}, backend.reconfigs)
	assert.Empty(t, backend.draws)

	res, err = r.RenderFrame(testModel("a"))
	require.NoError(t, err)
	assert.Equal(t, FramePresented, res)
}

func TestRenderFrameOutdatedAndTimeoutSkip(t *testing.T) {
	backend := &fakeBackend{beginErrs: []error{
		fmt.Errorf("get current texture: %w", ErrSurfaceOutdated),
		errors.New("SurfaceTexture status: Timeout"),
	}}
	r := newTestRenderer(t, backend, WithSurfaceSize(640, 480))

	for i := 0; i < 2; i++ {
		res, err := r.RenderFrame(testModel("a"))
		require.NoError(t, err)
		assert.Equal(t, FrameSkipped, res)
	}
	// only the outdated surface is reconfigured
	assert.Len(t, backend.reconfigs, 1)
}

func TestRenderFrameOutOfMemoryIsFatal(t *testing.T) {
	backend := &fakeBackend{beginErrs: []error{ErrOutOfMemory}}
	r := newTestRenderer(t, backend)

	res, err := r.RenderFrame(testModel("a"))
	require.Error(t, err)
	assert.Equal(t, FrameSkipped, res)

	var ae *AcquireError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, AcquireStatusOutOfMemory, ae.Status)
	assert.True(t, ae.Fatal())
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestRenderFrameMissingMaterialFailsBeforeAcquire(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	m := model.NewModel(model.WithMeshes(model.Mesh{Name: "orphan", MaterialIndex: 2}))
	_, err := r.RenderFrame(m)
	require.Error(t, err)
	assert.NotContains(t, backend.calls, "begin")
}

func TestRenderFrameNilModelClearsOnly(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	res, err := r.RenderFrame(nil)
	require.NoError(t, err)
	assert.Equal(t, FramePresented, res)
	assert.Empty(t, backend.draws)
}

func TestResizeIgnoresZeroSizes(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	r.Resize(0, 600)
	r.Resize(800, 0)
	assert.Empty(t, backend.reconfigs)

	r.Resize(800, 600)
	assert.Equal(t, [][2]int{{800, 600}}, backend.reconfigs)
}

func TestResizeFormatChangeInvalidatesPipelines(t *testing.T) {
	backend := &fakeBackend{format: wgpu.TextureFormatBGRA8UnormSrgb}
	r := newTestRenderer(t, backend)
	m := testModel("a")

	_, err := r.RenderFrame(m)
	require.NoError(t, err)
	require.Equal(t, 1, r.Pipelines().Len())

	r.Resize(1024, 768)
	assert.Equal(t, 1, r.Pipelines().Len(), "same format keeps pipelines")

	backend.format = wgpu.TextureFormatRGBA8UnormSrgb
	r.Resize(1024, 768)
	assert.Equal(t, 0, r.Pipelines().Len())
	assert.Equal(t, 1, backend.pipelines[0].released)

	_, err = r.RenderFrame(m)
	require.NoError(t, err)
	assert.Len(t, backend.pipelines, 2)
}

func TestWithInstancesSetsInstanceCount(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, WithInstances(model.IdentityInstance(), model.Instance{Position: [3]float32{1, 0, 0}}))

	_, err := r.RenderFrame(testModel("a"))
	require.NoError(t, err)
	require.Len(t, backend.draws, 1)
	assert.Equal(t, uint32(2), backend.draws[0].InstanceCount)
}

func TestWithPipelineOptionsReachCompiledPipelines(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, WithPipelineOptions(pipeline.WithCullMode(wgpu.CullModeNone)))

	_, err := r.RenderFrame(testModel("a"))
	require.NoError(t, err)
	require.Len(t, backend.compiled, 1)

	p := backend.compiled[0]
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Len(t, p.VertexLayouts(), 2, "vertex layouts are kept alongside extra options")
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
}

func TestBuiltInShaderMatchesHostLayout(t *testing.T) {
	var u camera.GPUCameraUniform
	assert.NoError(t, checkShader(TextureShaderSource, uint64(u.Size())))
}

func TestWithShaderRejectsMismatchedBindings(t *testing.T) {
	swapped := camera.GPUCameraUniformSource + model.GPUVertexSource + model.GPUMaterialFactorSource + `
@group(1) @binding(0) var t_diffuse: texture_2d<f32>;
@group(1) @binding(1) var s_diffuse: sampler;
@group(1) @binding(2) var<uniform> material: MaterialFactor;
@group(0) @binding(0) var<uniform> camera: CameraUniform;
@vertex fn vs_main(vertex: VertexInput, instance: InstanceInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(vertex.position, 1.0);
}
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	backend := &fakeBackend{}
	cam, err := camera.NewOrbitCamera()
	require.NoError(t, err)

	_, err = NewFrameRenderer(backend, cam, WithShader("swapped.wgsl", swapped))
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrContractMismatch)
	assert.Contains(t, err.Error(), `shader "swapped.wgsl"`)
	assert.Zero(t, backend.uniformSize, "nothing is allocated for a rejected shader")
}

func TestClassifyAcquireError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  AcquireStatus
		fatal bool
	}{
		{"lost sentinel", ErrSurfaceLost, AcquireStatusLost, false},
		{"wrapped outdated", fmt.Errorf("acquire: %w", ErrSurfaceOutdated), AcquireStatusOutdated, false},
		{"timeout sentinel", ErrSurfaceTimeout, AcquireStatusTimeout, false},
		{"oom sentinel", ErrOutOfMemory, AcquireStatusOutOfMemory, true},
		{"oom text", errors.New("SurfaceTexture status: OutOfMemory"), AcquireStatusOutOfMemory, true},
		{"lost text", errors.New("surface status Lost"), AcquireStatusLost, false},
		{"timed out text", errors.New("acquire timed out"), AcquireStatusTimeout, false},
		{"unknown", errors.New("device exploded"), AcquireStatusOther, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := ClassifyAcquireError(tt.err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.want, ae.Status)
			assert.Equal(t, tt.fatal, ae.Fatal())
			assert.ErrorIs(t, ae, tt.err)
		})
	}

	assert.Nil(t, ClassifyAcquireError(nil))

	orig := &AcquireError{Status: AcquireStatusLost, Err: errors.New("x")}
	assert.Same(t, orig, ClassifyAcquireError(fmt.Errorf("wrap: %w", orig)))
}
