package renderer

import (
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPreferredSurfaceFormatPicksSRGB(t *testing.T) {
	f, err := preferredSurfaceFormat([]wgpu.TextureFormat{
		wgpu.TextureFormatBGRA8Unorm,
		wgpu.TextureFormatBGRA8UnormSrgb,
	})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, f)

	f, err = preferredSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, f)

	_, err = preferredSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestGraphicsContextOptions(t *testing.T) {
	g := &graphicsContextImpl{}

	WithMSAA(MSAA4x)(g)
	assert.Equal(t, MSAA4x, g.sampleCount)
	WithMSAA(MSAASampleCount(8))(g)
	assert.Equal(t, MSAAOff, g.sampleCount)

	WithPresentMode(PresentModeUncapped)(g)
	assert.Equal(t, wgpu.PresentModeImmediate, g.presentMode)
	WithPresentMode(PresentModeVSync)(g)
	assert.Equal(t, wgpu.PresentModeFifo, g.presentMode)

	WithForceSoftwareRenderer()(g)
	assert.True(t, g.forceFallback)

	log := zap.NewNop().Named("graphics")
	WithGraphicsLogger(log)(g)
	assert.Same(t, log, g.log)
}

func TestNullSurfaceTextureIsOutdated(t *testing.T) {
	assert.True(t, nullTexture(nil))
	assert.True(t, nullTexture(&wgpu.Texture{}), "a texture without a native handle")

	err := ClassifyAcquireError(fmt.Errorf("surface returned no texture: %w", ErrSurfaceOutdated))
	require.NotNil(t, err)
	assert.Equal(t, AcquireStatusOutdated, err.Status)
	assert.False(t, err.Fatal())
}
