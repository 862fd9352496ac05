package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id       int
	released atomic.Int32
}

func (h *fakeHandle) Release() {
	h.released.Add(1)
}

func texturedKey() PipelineKey {
	return PipelineKey{
		ShaderID:           "texture.wgsl",
		VertexLayoutID:     "vertex+instance",
		BindGroupLayoutIDs: []string{"material", "camera"},
	}
}

func TestPipelineKeyString(t *testing.T) {
	a := texturedKey()
	b := texturedKey()
	assert.Equal(t, a.String(), b.String())

	b.BindGroupLayoutIDs = []string{"camera", "material"}
	assert.NotEqual(t, a.String(), b.String(), "bind group order is part of the key")

	c := PipelineKey{ShaderID: "texture.wgsl|vertex", VertexLayoutID: "", BindGroupLayoutIDs: nil}
	d := PipelineKey{ShaderID: "texture.wgsl", VertexLayoutID: "vertex", BindGroupLayoutIDs: nil}
	assert.Equal(t, "texture.wgsl|vertex||", c.String())
	assert.Equal(t, "texture.wgsl|vertex|", d.String())
}

func TestGetOrCreateBuildsOncePerKey(t *testing.T) {
	cache := NewPipelineCache()
	calls := 0
	build := func() (Handle, error) {
		calls++
		if calls > 1 {
			panic("pipeline rebuilt for a cached key")
		}
		return &fakeHandle{id: calls}, nil
	}

	first, err := cache.GetOrCreate(texturedKey(), build)
	require.NoError(t, err)
	for range 10 {
		again, err := cache.GetOrCreate(texturedKey(), build)
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrCreateDistinctKeys(t *testing.T) {
	cache := NewPipelineCache()
	other := texturedKey()
	other.ShaderID = "flat.wgsl"

	a, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) { return &fakeHandle{id: 1}, nil })
	require.NoError(t, err)
	b, err := cache.GetOrCreate(other, func() (Handle, error) { return &fakeHandle{id: 2}, nil })
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, cache.Len())
}

func TestGetOrCreateDoesNotCacheErrors(t *testing.T) {
	cache := NewPipelineCache()
	boom := errors.New("shader compile failed")

	_, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())

	h, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) { return &fakeHandle{id: 7}, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, h.(*fakeHandle).id)
	assert.Equal(t, 1, cache.Len())
}

func TestGetOrCreatePanickingBuildIsNotCached(t *testing.T) {
	cache := NewPipelineCache()

	assert.Panics(t, func() {
		_, _ = cache.GetOrCreate(texturedKey(), func() (Handle, error) { panic("driver crashed") })
	})
	assert.Equal(t, 0, cache.Len())

	h, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) { return &fakeHandle{id: 3}, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, h.(*fakeHandle).id)
}

func TestGetOrCreateConcurrentCallersShareOneBuild(t *testing.T) {
	cache := NewPipelineCache()
	var calls atomic.Int32
	release := make(chan struct{})
	build := func() (Handle, error) {
		calls.Add(1)
		<-release
		return &fakeHandle{id: 1}, nil
	}

	const callers = 16
	results := make([]Handle, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := cache.GetOrCreate(texturedKey(), build)
			assert.NoError(t, err)
			results[i] = h
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range results {
		assert.Same(t, results[0], h)
	}
}

func TestInvalidateAllReleasesHandles(t *testing.T) {
	cache := NewPipelineCache()
	a := &fakeHandle{id: 1}
	other := texturedKey()
	other.VertexLayoutID = "vertex"
	b := &fakeHandle{id: 2}

	_, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) { return a, nil })
	require.NoError(t, err)
	_, err = cache.GetOrCreate(other, func() (Handle, error) { return b, nil })
	require.NoError(t, err)

	cache.InvalidateAll()
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int32(1), a.released.Load())
	assert.Equal(t, int32(1), b.released.Load())

	rebuilt := false
	_, err = cache.GetOrCreate(texturedKey(), func() (Handle, error) {
		rebuilt = true
		return &fakeHandle{id: 3}, nil
	})
	require.NoError(t, err)
	assert.True(t, rebuilt)
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline(texturedKey(), "@vertex fn vs_main() {}")

	assert.Equal(t, texturedKey().String(), p.Key().String())
	assert.Equal(t, "vs_main", p.VertexEntryPoint())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, ReplaceBlend, *p.BlendState())

	custom := NewPipeline(texturedKey(), "", WithCullMode(wgpu.CullModeNone), WithEntryPoints("v", "f"), WithBlendState(nil))
	assert.Equal(t, wgpu.CullModeNone, custom.CullMode())
	assert.Equal(t, "v", custom.VertexEntryPoint())
	assert.Nil(t, custom.BlendState())
}

func TestPipelineOptionsOverrideDefaults(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 12}
	additive := wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: replaceComponent,
	}

	p := NewPipeline(texturedKey(), "",
		WithVertexLayouts(layout),
		WithDepth(false, false, wgpu.CompareFunctionLessEqual),
		WithDepthBias(2, 1.5),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(&additive),
	)

	assert.Equal(t, []wgpu.VertexBufferLayout{layout}, p.VertexLayouts())
	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.InDelta(t, 1.5, p.DepthBiasSlopeScale(), 1e-6)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Same(t, &additive, p.BlendState())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode(), "untouched state keeps its default")
}

func TestInvalidateDuringBuildReleasesOnNextInvalidate(t *testing.T) {
	cache := NewPipelineCache()
	built := &fakeHandle{id: 1}

	h, err := cache.GetOrCreate(texturedKey(), func() (Handle, error) {
		cache.InvalidateAll()
		return built, nil
	})
	require.NoError(t, err)
	assert.Same(t, built, h, "the caller still gets the handle it asked for")
	assert.Equal(t, 0, cache.Len(), "a handle built across an invalidation is not cached")
	assert.Equal(t, int32(0), built.released.Load(), "the handle stays valid for the current frame")

	cache.InvalidateAll()
	assert.Equal(t, int32(1), built.released.Load())

	cache.InvalidateAll()
	assert.Equal(t, int32(1), built.released.Load(), "orphaned handles are released once")
}
