package camera

// CameraBuilderOption is a functional option applied to an OrbitCamera during NewOrbitCamera.
type CameraBuilderOption func(*orbitCameraImpl)

// WithEye sets the initial camera position.
//
// Parameters:
//   - x, y, z: world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.eye = [3]float32{x, y, z}
	}
}

// WithTarget sets the orbit pivot and look-at point.
//
// Parameters:
//   - x, y, z: world-space target position
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.target = [3]float32{x, y, z}
	}
}

// WithUp sets the camera's up axis. It is normalized during construction.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithRadius sets the initial orbit radius and its bounds.
//
// Parameters:
//   - radius: initial distance from the target
//   - minRadius: smallest allowed distance (> 0)
//   - maxRadius: largest allowed distance (>= minRadius)
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius
func WithRadius(radius, minRadius, maxRadius float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.radius = radius
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithFovY sets the vertical field of view in radians.
//
// Parameters:
//   - fovY: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFovY(fovY float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.fovY = fovY
	}
}

// WithAspect sets the initial aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithViewport sets the initial pixel viewport used to scale drags.
//
// Parameters:
//   - width, height: viewport size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		if width > 0 && height > 0 {
			c.viewport = [2]float32{width, height}
			c.hasViewport = true
		}
	}
}

// WithInertia arms inertia at the given interpolation factor. Construction is the only point
// where inertia is armed.
//
// Parameters:
//   - factor: the initial factor in [0, 1]
//
// Returns:
//   - CameraBuilderOption: a function that arms inertia
func WithInertia(factor float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.inertia = factor
		c.hasInertia = true
	}
}

// WithInertiaDecay sets the per-tick multiplier applied to the inertia factor.
//
// Parameters:
//   - decay: multiplier in (0, 1)
//
// Returns:
//   - CameraBuilderOption: a function that sets the decay
func WithInertiaDecay(decay float32) CameraBuilderOption {
	return func(c *orbitCameraImpl) {
		c.inertiaDecay = decay
	}
}
