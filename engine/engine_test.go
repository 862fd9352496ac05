package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/sloth/engine/camera"
	"github.com/Carmen-Shannon/sloth/engine/event"
	"github.com/Carmen-Shannon/sloth/engine/model"
	"github.com/Carmen-Shannon/sloth/engine/renderer"
	"github.com/Carmen-Shannon/sloth/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/sloth/internal/config"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedWindow delivers one batch of events per PollEvents call.
type scriptedWindow struct {
	queue   *event.Queue
	batches [][]event.Event
	polls   int
	closed  bool
}

func newScriptedWindow(batches ...[]event.Event) *scriptedWindow {
	return &scriptedWindow{queue: event.NewQueue(), batches: batches}
}

func (w *scriptedWindow) Events() *event.Queue { return w.queue }

func (w *scriptedWindow) PollEvents() bool {
	if w.polls >= len(w.batches) {
		return false
	}
	for _, e := range w.batches[w.polls] {
		w.queue.Push(e)
	}
	w.polls++
	return true
}

func (w *scriptedWindow) RequestRedraw()                            { w.queue.Push(event.RedrawTickEvent{}) }
func (w *scriptedWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *scriptedWindow) Width() int                                { return 800 }
func (w *scriptedWindow) Height() int                               { return 600 }
func (w *scriptedWindow) Close() error {
	w.closed = true
	return nil
}

type fakeFrameRenderer struct {
	frames   int
	skipped  map[int]bool // frame numbers (1-based) reported as skipped
	resizes  [][2]int
	err      error
	panicMsg string
	released bool
	cam      camera.OrbitCamera
}

func (r *fakeFrameRenderer) RenderFrame(model.Model) (renderer.FrameResult, error) {
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	r.frames++
	if r.err != nil {
		return renderer.FrameSkipped, r.err
	}
	if r.skipped[r.frames] {
		return renderer.FrameSkipped, nil
	}
	return renderer.FramePresented, nil
}

func (r *fakeFrameRenderer) Resize(width, height int) {
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *fakeFrameRenderer) Pipelines() pipeline.PipelineCache { return pipeline.NewPipelineCache() }
func (r *fakeFrameRenderer) Camera() camera.OrbitCamera        { return r.cam }
func (r *fakeFrameRenderer) SetClearColor(wgpu.Color)          {}
func (r *fakeFrameRenderer) Release()                          { r.released = true }

func newTestViewer(t *testing.T, win *scriptedWindow, fr *fakeFrameRenderer) (*viewer, camera.OrbitCamera) {
	t.Helper()
	cam, err := newCamera(config.Default().Camera, 800, 600)
	require.NoError(t, err)
	fr.cam = cam

	v := newViewer(WithLogger(zap.NewNop()))
	v.window = win
	v.renderer = fr
	v.controller = camera.NewCameraController(cam)
	v.model = model.NewModel(model.WithName("test"))
	return v, cam
}

func TestStartWithEmptySourceIsNoop(t *testing.T) {
	assert.NoError(t, Start(""))
	assert.NoError(t, Start("   "))
}

func TestNewViewerRejectsEmptySource(t *testing.T) {
	_, err := NewViewer("")
	assert.Error(t, err)
}

func TestRunRendersUntilWindowCloses(t *testing.T) {
	win := newScriptedWindow(nil, nil, nil)
	fr := &fakeFrameRenderer{}
	v, _ := newTestViewer(t, win, fr)

	require.NoError(t, v.Run())
	assert.Equal(t, 3, fr.frames)
}

func TestRunStopsOnCloseRequested(t *testing.T) {
	win := newScriptedWindow(nil, []event.Event{event.CloseRequestedEvent{}}, nil, nil)
	fr := &fakeFrameRenderer{}
	v, _ := newTestViewer(t, win, fr)

	require.NoError(t, v.Run())
	assert.Equal(t, 1, fr.frames, "no frame is rendered after close is requested")
	assert.Equal(t, 2, win.polls)

	v.Close()
	assert.True(t, fr.released)
	assert.True(t, win.closed)
}

func TestRunRoutesEvents(t *testing.T) {
	win := newScriptedWindow(
		[]event.Event{event.ResizeEvent{Width: 1024, Height: 512}},
		[]event.Event{event.ResizeEvent{Width: 0, Height: 0}},
		[]event.Event{event.ScrollEvent{Axis: event.ScrollAxisVertical, Amount: 5, Unit: event.ScrollUnitLine}},
	)
	fr := &fakeFrameRenderer{}
	v, cam := newTestViewer(t, win, fr)
	radius := cam.Radius()

	require.NoError(t, v.Run())

	assert.Equal(t, [][2]int{{1024, 512}, {0, 0}}, fr.resizes)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6, "zero-size resize leaves the aspect alone")
	assert.Less(t, cam.Radius(), radius)
}

type countingTicker struct{ ticks int }

func (c *countingTicker) Tick() bool {
	c.ticks++
	return false
}

func TestRunTicksProfilerOnPresentedFramesOnly(t *testing.T) {
	win := newScriptedWindow(nil, nil, nil, nil)
	fr := &fakeFrameRenderer{skipped: map[int]bool{2: true, 3: true}}
	v, _ := newTestViewer(t, win, fr)
	ticker := &countingTicker{}
	v.profiler = ticker

	require.NoError(t, v.Run())
	assert.Equal(t, 4, fr.frames)
	assert.Equal(t, 2, ticker.ticks)
}

func TestRunStopsOnFatalRenderError(t *testing.T) {
	fatal := &renderer.AcquireError{Status: renderer.AcquireStatusOutOfMemory, Err: renderer.ErrOutOfMemory}
	win := newScriptedWindow(nil, nil, nil)
	fr := &fakeFrameRenderer{err: fatal}
	v, _ := newTestViewer(t, win, fr)

	err := v.Run()
	assert.ErrorIs(t, err, renderer.ErrOutOfMemory)
	assert.Equal(t, 1, fr.frames)
}

func TestRunRecoversFromPanic(t *testing.T) {
	win := newScriptedWindow(nil, nil)
	fr := &fakeFrameRenderer{panicMsg: "boom"}
	v, _ := newTestViewer(t, win, fr)

	err := v.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, v.running())
}

func TestQuitIsIdempotent(t *testing.T) {
	v := newViewer(WithLogger(zap.NewNop()))
	v.Quit()
	v.Quit()
	assert.False(t, v.running())
}

func TestNewViewerAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.FrameLimit = 50
	cfg.Profiler.Enabled = true

	v := newViewer(WithConfig(cfg), WithConfig(nil))
	assert.Same(t, cfg, v.cfg)
	assert.Equal(t, 20*time.Millisecond, v.renderFrameLimit)
	assert.NotNil(t, v.profiler)
}

func TestNewCameraFromConfig(t *testing.T) {
	cfg := config.Default().Camera
	cfg.FovYDegrees = 90

	cam, err := newCamera(cfg, 400, 200)
	require.NoError(t, err)
	assert.InDelta(t, 1.5707963, cam.FovY(), 1e-5)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
	assert.InDelta(t, 5.0, cam.Radius(), 1e-6)

	cfg.MinRadius = 0
	_, err = newCamera(cfg, 400, 200)
	assert.True(t, errors.Is(err, camera.ErrInvalidRadius))
}
