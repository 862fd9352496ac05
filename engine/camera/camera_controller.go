package camera

import "github.com/Carmen-Shannon/sloth/engine/event"

// CameraController translates raw window events into OrbitCamera operations and owns the
// drag session state. It holds only a handle to the camera and never touches camera fields directly.
type CameraController interface {
	// HandleEvent applies one event to the camera.
	//
	// Pointer moves rotate the camera while a drag is active and always record the position as the
	// next drag anchor. Primary button changes start or end a drag. Line scrolls zoom by
	// amount * Sensitivity; pixel scrolls zoom by amount * PixelScrollFactor. Resizes update the
	// camera viewport and aspect ratio, ignoring zero-sized frames.
	//
	// Parameters:
	//   - e: the event to handle
	//
	// Returns:
	//   - bool: true if the event kind is handled by the controller, false otherwise
	HandleEvent(e event.Event) bool

	// DragActive reports whether the primary button is held.
	//
	// Returns:
	//   - bool: true while dragging
	DragActive() bool

	// Sensitivity returns the line-scroll zoom multiplier.
	//
	// Returns:
	//   - float32: the multiplier
	Sensitivity() float32

	// PixelScrollFactor returns the pixel-scroll zoom multiplier.
	//
	// Returns:
	//   - float32: the multiplier
	PixelScrollFactor() float32

	// Camera returns the controlled camera.
	//
	// Returns:
	//   - OrbitCamera: the camera
	Camera() OrbitCamera
}
