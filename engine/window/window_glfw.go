package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the platform half of an engineWindow.
type glfwWindow struct {
	handle *glfw.Window
	open   bool
}

// active returns the GLFW state of w if its window is still open.
func active(w *engineWindow) (*glfwWindow, bool) {
	gw, ok := w.internalWindow.(*glfwWindow)
	return gw, ok && gw.open
}

// newPlatformWindow opens a client-API-less GLFW window, since the surface is driven by wgpu, and
// routes its input into w. GLFW must stay on the thread that initialized it.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("glfw create window %q: %w", w.title, err)
	}
	handle.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	w.internalWindow = &glfwWindow{handle: handle, open: true}
	routeInput(w, handle)

	// the surface is sized in framebuffer pixels, which differ from screen coordinates on high-DPI displays
	w.width, w.height = handle.GetFramebufferSize()
	return nil
}

func routeInput(w *engineWindow, handle *glfw.Window) {
	handle.SetCloseCallback(func(h *glfw.Window) {
		// closing is vetoable; the frame loop acts on the request
		h.SetShouldClose(false)
		w.onCloseRequested()
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press && key == glfw.KeyEscape {
			w.onCloseRequested()
		}
	})

	handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press || action == glfw.Release {
			w.onMouseButton(int(button), action == glfw.Press)
		}
	})
	handle.SetCursorPosCallback(func(h *glfw.Window, x, y float64) {
		sw, sh := h.GetSize()
		if sw > 0 && sh > 0 {
			x *= float64(w.width) / float64(sw)
			y *= float64(w.height) / float64(sh)
		}
		w.onCursorPos(x, y)
	})
	handle.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.onScroll(dx, dy)
	})

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.onFramebufferResize(width, height)
	})
}

// sizeLimit maps an unset (<= 0) limit to GLFW's DontCare.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := active(w)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

// platformCloseWindow destroys the window and terminates GLFW.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: if the window was never opened or is already closed
func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	switch {
	case !ok:
		return errors.New("window is not initialized")
	case !gw.open:
		return errors.New("window is already closed")
	}
	gw.open = false
	gw.handle.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessMessages drains pending GLFW events without blocking and reports whether the
// window is still open.
func platformProcessMessages(w *engineWindow) bool {
	gw, ok := active(w)
	if !ok {
		return false
	}
	glfw.PollEvents()
	return gw.open
}
