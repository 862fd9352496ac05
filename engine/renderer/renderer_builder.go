package renderer

import (
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewFrameRenderer.
type RendererBuilderOption func(*renderer)

// WithShader replaces the built-in textured shader. The source must declare vs_main and fs_main
// and bind the material at group 0 and the camera at group 1.
//
// Parameters:
//   - id: the shader identifier used in pipeline keys
//   - source: the complete WGSL source
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader option to a renderer
func WithShader(id, source string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderID = id
		r.shaderSource = source
	}
}

// WithPipelineOptions adds fixed-function state applied to every pipeline the renderer compiles,
// e.g. pipeline.WithCullMode(wgpu.CullModeNone) for double-sided models.
//
// Parameters:
//   - options: pipeline options applied after the vertex layouts
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline options to a renderer
func WithPipelineOptions(options ...pipeline.PipelineBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineOptions = append(r.pipelineOptions, options...)
	}
}

// WithClearColor sets the background color each frame is cleared to. Defaults to opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithInstances sets the instances drawn for every mesh. Defaults to one identity instance.
// An empty list keeps the default.
//
// Parameters:
//   - instances: the instances
//
// Returns:
//   - RendererBuilderOption: a function that applies the instances option to a renderer
func WithInstances(instances ...model.Instance) RendererBuilderOption {
	return func(r *renderer) {
		if len(instances) > 0 {
			r.instances = instances
		}
	}
}

// WithSurfaceSize records the initial surface size used when a lost surface is reconfigured
// before any resize has been seen.
//
// Parameters:
//   - width, height: the surface size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSurfaceSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithPipelineCache shares an existing pipeline cache with the renderer.
//
// Parameters:
//   - cache: the pipeline cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the cache option to a renderer
func WithPipelineCache(cache pipeline.PipelineCache) RendererBuilderOption {
	return func(r *renderer) {
		r.cache = cache
	}
}

// WithLogger sets the logger. Defaults to the global logger named "renderer".
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.log = log
	}
}
