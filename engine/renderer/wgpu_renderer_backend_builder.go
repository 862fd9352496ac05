package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// GraphicsContextOption is a functional option applied to a GraphicsContext during construction via NewGraphicsContext.
type GraphicsContextOption func(*graphicsContextImpl)

// WithPresentMode sets the initial present mode. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - GraphicsContextOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) GraphicsContextOption {
	return func(g *graphicsContextImpl) {
		if mode == PresentModeUncapped {
			g.presentMode = wgpu.PresentModeImmediate
		} else {
			g.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithMSAA sets the multisample count of the main render pass. Unsupported counts fall back to MSAAOff.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - GraphicsContextOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) GraphicsContextOption {
	return func(g *graphicsContextImpl) {
		if count == MSAA4x {
			g.sampleCount = MSAA4x
		} else {
			g.sampleCount = MSAAOff
		}
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
//
// Returns:
//   - GraphicsContextOption: a function that applies the fallback adapter option
func WithForceSoftwareRenderer() GraphicsContextOption {
	return func(g *graphicsContextImpl) {
		g.forceFallback = true
	}
}

// WithGraphicsLogger sets the logger. Defaults to the global logger named "graphics".
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - GraphicsContextOption: a function that applies the logger option
func WithGraphicsLogger(log *zap.Logger) GraphicsContextOption {
	return func(g *graphicsContextImpl) {
		g.log = log
	}
}
