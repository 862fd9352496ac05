// Package event defines the typed input and lifecycle events a window host delivers to the viewer,
// plus the single-consumer queue that carries them from the windowing callbacks to the frame loop.
package event

// Event is implemented by every event type a window host can deliver.
type Event interface {
	isEvent()
}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	// MouseButtonLeft is the primary button.
	MouseButtonLeft MouseButton = iota
	// MouseButtonRight is the secondary button.
	MouseButtonRight
	// MouseButtonMiddle is the middle button or wheel click.
	MouseButtonMiddle
	// MouseButtonOther covers any additional buttons.
	MouseButtonOther
)

// ScrollAxis identifies the direction of a scroll.
type ScrollAxis int

const (
	// ScrollAxisVertical is the ordinary wheel direction. Positive amounts scroll up / away from the user.
	ScrollAxisVertical ScrollAxis = iota
	// ScrollAxisHorizontal is tilt-wheel or trackpad sideways scrolling.
	ScrollAxisHorizontal
)

// ScrollUnit tells how a scroll amount is measured.
type ScrollUnit int

const (
	// ScrollUnitLine amounts count wheel notches or lines.
	ScrollUnitLine ScrollUnit = iota
	// ScrollUnitPixel amounts are raw pixel deltas, typically from trackpads.
	ScrollUnitPixel
)

// PointerMoveEvent reports the pointer position in framebuffer pixels.
type PointerMoveEvent struct {
	X, Y float32
}

// ButtonEvent reports a pointer button press or release.
type ButtonEvent struct {
	Button  MouseButton
	Pressed bool
}

// ScrollEvent reports a scroll along one axis.
type ScrollEvent struct {
	Axis   ScrollAxis
	Amount float32
	Unit   ScrollUnit
}

// ResizeEvent reports a new framebuffer size in pixels. Either dimension may be zero while minimized.
type ResizeEvent struct {
	Width, Height int
}

// CloseRequestedEvent reports that the user asked to close the window.
type CloseRequestedEvent struct{}

// RedrawTickEvent asks the frame loop to render a frame.
type RedrawTickEvent struct{}

func (PointerMoveEvent) isEvent()    {}
func (ButtonEvent) isEvent()         {}
func (ScrollEvent) isEvent()         {}
func (ResizeEvent) isEvent()         {}
func (CloseRequestedEvent) isEvent() {}
func (RedrawTickEvent) isEvent()     {}
