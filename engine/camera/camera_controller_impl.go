package camera

import (
	"sync"

	"github.com/Carmen-Shannon/sloth/engine/event"
)

type cameraControllerImpl struct {
	mu *sync.Mutex

	camera OrbitCamera

	sensitivity       float32
	pixelScrollFactor float32
	primaryButton     event.MouseButton

	dragActive bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller driving the given camera.
// Defaults: line-scroll sensitivity 0.2, pixel-scroll factor 0.01, primary button left.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam OrbitCamera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:                &sync.Mutex{},
		camera:            cam,
		sensitivity:       0.2,
		pixelScrollFactor: 0.01,
		primaryButton:     event.MouseButtonLeft,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) HandleEvent(e event.Event) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	switch ev := e.(type) {
	case event.PointerMoveEvent:
		if cc.dragActive {
			cc.camera.DragUpdate(ev.X, ev.Y)
		}
		cc.camera.SetLastPointer(ev.X, ev.Y)
		return true

	case event.ButtonEvent:
		if ev.Button == cc.primaryButton {
			cc.dragActive = ev.Pressed
		}
		return true

	case event.ScrollEvent:
		if ev.Axis != event.ScrollAxisVertical {
			return true
		}
		switch ev.Unit {
		case event.ScrollUnitPixel:
			cc.camera.Zoom(ev.Amount * cc.pixelScrollFactor)
		default:
			cc.camera.Zoom(ev.Amount * cc.sensitivity)
		}
		return true

	case event.ResizeEvent:
		if ev.Width > 0 && ev.Height > 0 {
			w, h := float32(ev.Width), float32(ev.Height)
			cc.camera.SetViewport(w, h)
			cc.camera.SetAspect(w / h)
		}
		return true
	}

	return false
}

func (cc *cameraControllerImpl) DragActive() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dragActive
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	return cc.sensitivity
}

func (cc *cameraControllerImpl) PixelScrollFactor() float32 {
	return cc.pixelScrollFactor
}

func (cc *cameraControllerImpl) Camera() OrbitCamera {
	return cc.camera
}
