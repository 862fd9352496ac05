package camera

import "github.com/Carmen-Shannon/sloth/engine/event"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSensitivity sets the multiplier applied to line-unit scroll amounts before zooming.
//
// Parameters:
//   - sensitivity: zoom distance per scrolled line
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}

// WithPixelScrollFactor sets the multiplier applied to pixel-unit scroll amounts before zooming.
// Pixel deltas are far larger than line counts, so this is kept separate from the sensitivity.
//
// Parameters:
//   - factor: zoom distance per scrolled pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the pixel scroll factor
func WithPixelScrollFactor(factor float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pixelScrollFactor = factor
	}
}

// WithPrimaryButton selects which pointer button starts a drag.
//
// Parameters:
//   - button: the drag button
//
// Returns:
//   - CameraControllerOption: functional option to set the drag button
func WithPrimaryButton(button event.MouseButton) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.primaryButton = button
	}
}
