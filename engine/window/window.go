package window

import (
	"github.com/Carmen-Shannon/sloth/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the viewer's window host. Platform callbacks translate input and lifecycle changes
// into typed events on a queue that the frame loop drains once per frame.
type Window interface {
	// Events returns the queue the window pushes events onto.
	//
	// Returns:
	//   - *event.Queue: the event queue
	Events() *event.Queue

	// PollEvents processes pending platform events without blocking. Callbacks run on the calling
	// goroutine, which must be the one that created the window.
	//
	// Returns:
	//   - bool: false once the window has been closed
	PollEvents() bool

	// RequestRedraw enqueues a RedrawTickEvent. Requests are coalesced until the queue is drained.
	RequestRedraw()

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created or is already closed
	Close() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound interactive resizing; 0 leaves the axis unbounded.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound interactive resizing; 0 leaves the axis unbounded.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	queue *event.Queue

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window configured by options.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the new window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// newEngineWindow applies defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "sloth",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		queue:     event.NewQueue(),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) Events() *event.Queue {
	return w.queue
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) RequestRedraw() {
	w.queue.Push(event.RedrawTickEvent{})
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// onFramebufferResize records the new size and reports it.
func (w *engineWindow) onFramebufferResize(width, height int) {
	w.width = width
	w.height = height
	w.queue.Push(event.ResizeEvent{Width: width, Height: height})
}

// onScroll reports wheel offsets. GLFW reports notches for wheels, so both axes are line units.
func (w *engineWindow) onScroll(xoff, yoff float64) {
	if yoff != 0 {
		w.queue.Push(event.ScrollEvent{Axis: event.ScrollAxisVertical, Amount: float32(yoff), Unit: event.ScrollUnitLine})
	}
	if xoff != 0 {
		w.queue.Push(event.ScrollEvent{Axis: event.ScrollAxisHorizontal, Amount: float32(xoff), Unit: event.ScrollUnitLine})
	}
}

// onMouseButton reports a press or release of the button with the given platform index.
func (w *engineWindow) onMouseButton(index int, pressed bool) {
	w.queue.Push(event.ButtonEvent{Button: mouseButtonFromIndex(index), Pressed: pressed})
}

func (w *engineWindow) onCursorPos(x, y float64) {
	w.queue.Push(event.PointerMoveEvent{X: float32(x), Y: float32(y)})
}

func (w *engineWindow) onCloseRequested() {
	w.queue.Push(event.CloseRequestedEvent{})
}

// mouseButtonFromIndex maps GLFW button indices (left 0, right 1, middle 2) to event buttons.
func mouseButtonFromIndex(index int) event.MouseButton {
	switch index {
	case 0:
		return event.MouseButtonLeft
	case 1:
		return event.MouseButtonRight
	case 2:
		return event.MouseButtonMiddle
	default:
		return event.MouseButtonOther
	}
}
