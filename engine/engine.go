package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/sloth/engine/camera"
	"github.com/Carmen-Shannon/sloth/engine/event"
	"github.com/Carmen-Shannon/sloth/engine/loader"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/profiler"
	"github.com/Carmen-Shannon/sloth/engine/renderer"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sloth/engine/window"
	"github.com/Carmen-Shannon/sloth/internal/config"
	"github.com/Carmen-Shannon/sloth/internal/logger"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// viewer implements the Viewer interface.
// Owns the window, graphics context, camera, loaded model and renderer for one source.
type viewer struct {
	cfg *config.Config
	ctx context.Context
	log *zap.Logger

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window     window.Window
	gfx        renderer.GraphicsContext
	controller camera.CameraController
	renderer   renderer.FrameRenderer
	model      model.Model

	profiler         frameTicker
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// frameTicker is told about every presented frame. *profiler.Profiler satisfies it.
type frameTicker interface {
	Tick() bool
}

// Viewer displays one glTF model in an interactive orbit view.
type Viewer interface {
	// Run runs the frame loop on the calling goroutine until the window is closed, Quit is called,
	// or rendering fails. It must be called from the goroutine that created the viewer.
	//
	// Returns:
	//   - error: the fatal render error or recovered panic that stopped the loop, or nil
	Run() error

	// Quit stops the frame loop after the current iteration.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Model returns the loaded model.
	//
	// Returns:
	//   - model.Model: the model drawn every frame
	Model() model.Model

	// Window returns the window hosting the view.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Close releases the model, renderer, graphics context and window.
	Close()
}

var _ Viewer = &viewer{}

// Start opens a window showing source and blocks until the viewer exits.
// An empty source is a no-op.
//
// Parameters:
//   - source: a model name under the asset dir, a .gltf/.glb path, or an http(s) URL
//   - options: functional options for viewer configuration
//
// Returns:
//   - error: a startup failure (including a *loader.LoadError) or the error that stopped the loop
func Start(source string, options ...ViewerBuilderOption) error {
	if strings.TrimSpace(source) == "" {
		return nil
	}

	v, err := NewViewer(source, options...)
	if err != nil {
		return err
	}
	defer v.Close()

	return v.Run()
}

// NewViewer creates the window and graphics context, loads source and prepares the renderer.
// A load failure aborts startup and releases everything created so far.
//
// Parameters:
//   - source: a model name under the asset dir, a .gltf/.glb path, or an http(s) URL
//   - options: functional options for viewer configuration
//
// Returns:
//   - Viewer: the ready viewer
//   - error: error if any component could not be created or the model failed to load
func NewViewer(source string, options ...ViewerBuilderOption) (Viewer, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("empty source")
	}

	v := newViewer(options...)
	cfg := v.cfg

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	v.window = win

	if err := v.init(source); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func newViewer(options ...ViewerBuilderOption) *viewer {
	v := &viewer{
		cfg:         config.Default(),
		ctx:         context.Background(),
		log:         logger.Named("viewer"),
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(v)
	}

	if v.cfg.Profiler.Enabled {
		v.profiler = profiler.NewProfiler(time.Second)
	}
	if v.cfg.Render.FrameLimit > 0 {
		v.renderFrameLimit = time.Second / time.Duration(v.cfg.Render.FrameLimit)
	}
	return v
}

// init builds everything behind the window in dependency order.
func (v *viewer) init(source string) error {
	cfg := v.cfg

	presentMode := renderer.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	gfx, err := renderer.NewGraphicsContext(v.window.SurfaceDescriptor(),
		renderer.WithPresentMode(presentMode),
		renderer.WithGraphicsLogger(v.log.Named("graphics")),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
	)
	if err != nil {
		return fmt.Errorf("creating graphics context: %w", err)
	}
	v.gfx = gfx

	width, height := v.window.Width(), v.window.Height()
	// configures the surface so the renderer sees the real surface format
	gfx.Reconfigure(width, height)

	cam, err := newCamera(cfg.Camera, width, height)
	if err != nil {
		return fmt.Errorf("creating camera: %w", err)
	}
	v.controller = camera.NewCameraController(cam,
		camera.WithSensitivity(cfg.Camera.Sensitivity),
		camera.WithPixelScrollFactor(cfg.Camera.PixelScrollFactor),
	)

	sceneLoader := loader.NewSceneLoader(gfx,
		loader.WithBaseDir(cfg.Assets.BaseDir),
		loader.WithDecodeWorkers(cfg.Assets.DecodeWorkers),
		loader.WithHTTPTimeout(cfg.Assets.HTTPTimeout.Std()),
	)
	m, err := sceneLoader.Load(v.ctx, source)
	if err != nil {
		return err
	}
	v.model = m

	c := cfg.Render.ClearColor
	rendererOptions := []renderer.RendererBuilderOption{
		renderer.WithClearColor(wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
		renderer.WithSurfaceSize(width, height),
	}
	if cfg.Render.DoubleSided {
		rendererOptions = append(rendererOptions, renderer.WithPipelineOptions(pipeline.WithCullMode(wgpu.CullModeNone)))
	}
	fr, err := renderer.NewFrameRenderer(gfx, cam, rendererOptions...)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	v.renderer = fr

	v.log.Info("viewer ready",
		zap.String("source", source),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("surface_format", fmt.Sprint(gfx.SurfaceFormat())),
	)
	return nil
}

// newCamera builds the orbit camera from its config section.
func newCamera(cfg config.CameraConfig, width, height int) (camera.OrbitCamera, error) {
	options := []camera.CameraBuilderOption{
		camera.WithEye(cfg.Eye[0], cfg.Eye[1], cfg.Eye[2]),
		camera.WithTarget(cfg.Target[0], cfg.Target[1], cfg.Target[2]),
		camera.WithFovY(cfg.FovYDegrees * math32.Pi / 180),
		camera.WithClipPlanes(cfg.ZNear, cfg.ZFar),
		camera.WithRadius(cfg.Radius, cfg.MinRadius, cfg.MaxRadius),
		camera.WithInertiaDecay(cfg.InertiaDecay),
	}
	if width > 0 && height > 0 {
		options = append(options,
			camera.WithViewport(float32(width), float32(height)),
			camera.WithAspect(float32(width)/float32(height)),
		)
	}
	return camera.NewOrbitCamera(options...)
}

func (v *viewer) Run() (err error) {
	// Recover from panics inside the frame loop so the deferred Close still runs.
	defer func() {
		if r := recover(); r != nil {
			v.log.Error("frame loop recovered from panic", zap.Any("panic", r))
			err = fmt.Errorf("frame loop panic: %v", r)
			v.Quit()
		}
	}()

	for v.running() {
		frameStart := time.Now()

		if !v.window.PollEvents() {
			v.log.Info("window closed")
			return nil
		}
		v.window.RequestRedraw()

		if redraw := v.handleEvents(v.window.Events().Drain()); redraw && v.running() {
			res, err := v.renderer.RenderFrame(v.model)
			if err != nil {
				v.log.Error("rendering failed, stopping", zap.Error(err))
				return err
			}
			if res == renderer.FramePresented && v.profiler != nil {
				v.profiler.Tick()
			}
		}

		// Frame rate limiting
		if v.renderFrameLimit > 0 {
			if remaining := v.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	return nil
}

// handleEvents dispatches one drained batch and reports whether a redraw was requested.
func (v *viewer) handleEvents(events []event.Event) bool {
	redraw := false
	for _, e := range events {
		switch ev := e.(type) {
		case event.CloseRequestedEvent:
			v.log.Info("close requested")
			v.Quit()
		case event.ResizeEvent:
			v.renderer.Resize(ev.Width, ev.Height)
			v.controller.HandleEvent(ev)
		case event.RedrawTickEvent:
			redraw = true
		default:
			v.controller.HandleEvent(e)
		}
	}
	return redraw
}

// running reports whether Quit has not been called yet.
func (v *viewer) running() bool {
	select {
	case <-v.quitChannel:
		return false
	default:
		return true
	}
}

// Quit signals the frame loop to stop.
// Uses sync.Once to ensure the channel is only closed once.
func (v *viewer) Quit() {
	v.quitOnce.Do(func() {
		close(v.quitChannel)
	})
}

func (v *viewer) Model() model.Model {
	return v.model
}

func (v *viewer) Window() window.Window {
	return v.window
}

func (v *viewer) Close() {
	v.Quit()
	if v.renderer != nil {
		v.renderer.Release()
		v.renderer = nil
	}
	if v.model != nil {
		v.model.Release()
		v.model = nil
	}
	if v.gfx != nil {
		v.gfx.Release()
		v.gfx = nil
	}
	if v.window != nil {
		if err := v.window.Close(); err != nil {
			v.log.Debug("closing window", zap.Error(err))
		}
		v.window = nil
	}
	v.log.Info("viewer shut down")
}
