package camera

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/sloth/common"
	"github.com/chewxy/math32"
)

// inertiaThreshold is the interpolation factor at or below which inertia settles.
const inertiaThreshold = 0.001

// degenerateEpsilon is the smallest eye-target separation (and right-vector length) treated as non-zero.
const degenerateEpsilon = 1e-6

var (
	// ErrDegenerateView is returned when eye and target coincide, leaving the view direction undefined.
	ErrDegenerateView = errors.New("camera eye and target coincide")

	// ErrInvalidRadius is returned when the radius bounds are not positive or not ordered.
	ErrInvalidRadius = errors.New("camera radius bounds are invalid")
)

type orbitCameraImpl struct {
	mu *sync.Mutex

	eye    [3]float32
	target [3]float32
	up     [3]float32

	radius    float32
	minRadius float32
	maxRadius float32

	fovY   float32
	aspect float32
	near   float32
	far    float32

	lastPointer    [2]float32
	hasLastPointer bool

	inertia      float32
	hasInertia   bool
	inertiaDecay float32

	viewport    [2]float32
	hasViewport bool
}

// OrbitCamera is a camera parameterized by a pivot (target), a distance (radius) and two angular
// degrees of freedom driven by pointer drags. It owns the projection parameters and produces the
// combined view-projection matrix in WebGPU clip space.
//
// Drag rotation yaws around the fixed up axis first, then pitches around the right vector recomputed
// after the yaw. This composition is exact for small steps and drifts slightly under very large
// instantaneous deltas.
type OrbitCamera interface {
	// Eye returns the world-space camera position.
	//
	// Returns:
	//   - [3]float32: the eye position
	Eye() [3]float32

	// Target returns the world-space pivot the camera orbits and looks at.
	//
	// Returns:
	//   - [3]float32: the target position
	Target() [3]float32

	// Up returns the unit up axis used for yaw and for the view matrix.
	//
	// Returns:
	//   - [3]float32: the up vector
	Up() [3]float32

	// Radius returns the current orbit radius.
	//
	// Returns:
	//   - float32: the radius, always within [MinRadius, MaxRadius]
	Radius() float32

	// MinRadius returns the smallest allowed orbit radius.
	//
	// Returns:
	//   - float32: the minimum radius
	MinRadius() float32

	// MaxRadius returns the largest allowed orbit radius.
	//
	// Returns:
	//   - float32: the maximum radius
	MaxRadius() float32

	// FovY returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	FovY() float32

	// Aspect returns the projection aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: the near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: the far plane distance
	Far() float32

	// Viewport returns the pixel dimensions used to scale pointer deltas into angles.
	//
	// Returns:
	//   - width, height: the viewport size
	//   - ok: false when no viewport was set (drags then assume a 1x1 viewport)
	Viewport() (width, height float32, ok bool)

	// LastPointer returns the drag anchor.
	//
	// Returns:
	//   - x, y: the last recorded pointer position
	//   - ok: false when no anchor is set
	LastPointer() (x, y float32, ok bool)

	// Inertia returns the residual interpolation factor.
	//
	// Returns:
	//   - float32: the factor in [0, 1]
	//   - bool: false once inertia has settled
	Inertia() (float32, bool)

	// InertiaDecay returns the per-tick multiplier applied to the inertia factor.
	//
	// Returns:
	//   - float32: the decay in (0, 1)
	InertiaDecay() float32

	// DragUpdate rotates the eye around the target using the pointer movement since the last anchor.
	// The first call after the anchor is cleared only records the position.
	//
	// With a viewport of (w, h), the yaw is (last.x - x) * 2π / w and the pitch is (y - last.y) * π / h.
	// Drag sensitivity therefore depends on the viewport size.
	//
	// Parameters:
	//   - x, y: the pointer position in pixels
	DragUpdate(x, y float32)

	// Zoom moves the eye along the eye-target ray: radius -= delta, clamped to [MinRadius, MaxRadius].
	//
	// Parameters:
	//   - delta: positive moves closer, negative moves away
	Zoom(delta float32)

	// SetViewport sets the pixel dimensions used by DragUpdate. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	SetViewport(width, height float32)

	// SetAspect sets the projection aspect ratio. Non-positive or non-finite values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetLastPointer records the drag anchor so the next DragUpdate measures its delta from it.
	//
	// Parameters:
	//   - x, y: the pointer position in pixels
	SetLastPointer(x, y float32)

	// ClearLastPointer drops the drag anchor so the next DragUpdate starts a fresh baseline.
	ClearLastPointer()

	// Update advances inertia by one tick. While the factor v is above 0.001 the eye is pulled
	// toward the target by eye = target + (eye - target) * v and v decays. Once v falls to or below
	// 0.001 inertia settles and further calls have no effect.
	Update()

	// ViewProjection returns OpenGLToWGPU * Perspective * LookAt for the current state (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjection() [16]float32

	// Uniform snapshots the camera into its GPU representation.
	//
	// Returns:
	//   - GPUCameraUniform: the eye position and view-projection matrix
	Uniform() GPUCameraUniform
}

var _ OrbitCamera = &orbitCameraImpl{}

// NewOrbitCamera creates an OrbitCamera. Defaults: eye (0,1,2), target at the origin, up +Y,
// 45° vertical field of view, near 0.1, far 100, aspect 1, radius 5 within [2, 10],
// inertia armed at 0 with decay 0.9.
//
// The radius is clamped into its bounds and the eye is placed on the target-eye ray at that radius,
// so |eye - target| == Radius() holds from construction onward.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - OrbitCamera: the newly created camera
//   - error: ErrDegenerateView or ErrInvalidRadius for an unusable configuration
func NewOrbitCamera(options ...CameraBuilderOption) (OrbitCamera, error) {
	c := &orbitCameraImpl{
		mu:           &sync.Mutex{},
		eye:          [3]float32{0, 1, 2},
		target:       [3]float32{0, 0, 0},
		up:           [3]float32{0, 1, 0},
		radius:       5,
		minRadius:    2,
		maxRadius:    10,
		fovY:         45 * (math32.Pi / 180),
		aspect:       1,
		near:         0.1,
		far:          100,
		inertia:      0,
		hasInertia:   true,
		inertiaDecay: 0.9,
	}
	for _, option := range options {
		option(c)
	}

	if c.minRadius <= 0 || c.maxRadius < c.minRadius {
		return nil, fmt.Errorf("%w: min=%v max=%v", ErrInvalidRadius, c.minRadius, c.maxRadius)
	}
	if common.Length3(common.Sub3(c.eye, c.target)) < degenerateEpsilon {
		return nil, ErrDegenerateView
	}
	if common.Length3(c.up) < degenerateEpsilon {
		return nil, fmt.Errorf("camera up vector is zero")
	}
	if c.inertiaDecay <= 0 || c.inertiaDecay >= 1 {
		return nil, fmt.Errorf("camera inertia decay %v outside (0, 1)", c.inertiaDecay)
	}

	c.up = common.Normalize3(c.up)
	c.radius = common.Clamp(c.radius, c.minRadius, c.maxRadius)
	c.placeEye()

	return c, nil
}

func (c *orbitCameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *orbitCameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitCameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *orbitCameraImpl) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *orbitCameraImpl) MinRadius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minRadius
}

func (c *orbitCameraImpl) MaxRadius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxRadius
}

func (c *orbitCameraImpl) FovY() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovY
}

func (c *orbitCameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *orbitCameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *orbitCameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *orbitCameraImpl) Viewport() (float32, float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport[0], c.viewport[1], c.hasViewport
}

func (c *orbitCameraImpl) LastPointer() (float32, float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPointer[0], c.lastPointer[1], c.hasLastPointer
}

func (c *orbitCameraImpl) Inertia() (float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inertia, c.hasInertia
}

func (c *orbitCameraImpl) InertiaDecay() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inertiaDecay
}

func (c *orbitCameraImpl) DragUpdate(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasLastPointer {
		width, height := float32(1), float32(1)
		if c.hasViewport {
			width, height = c.viewport[0], c.viewport[1]
		}

		deltaX := (c.lastPointer[0] - x) * (2 * math32.Pi / width)
		deltaY := (y - c.lastPointer[1]) * (math32.Pi / height)

		offset := common.RotateAxisAngle3(common.Sub3(c.eye, c.target), c.up, deltaX)

		// right = normalize(up x viewDir), recomputed after the yaw
		right := common.Cross3(c.up, common.Scale3(offset, -1))
		if common.Length3(right) > degenerateEpsilon {
			offset = common.RotateAxisAngle3(offset, common.Normalize3(right), deltaY)
		}

		c.eye = common.Add3(c.target, offset)
	}

	c.lastPointer = [2]float32{x, y}
	c.hasLastPointer = true
}

func (c *orbitCameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.radius = common.Clamp(c.radius-delta, c.minRadius, c.maxRadius)
	c.placeEye()
}

func (c *orbitCameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !(width > 0) || !(height > 0) {
		return
	}
	c.viewport = [2]float32{width, height}
	c.hasViewport = true
}

func (c *orbitCameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !(aspect > 0) || math32.IsInf(aspect, 0) {
		return
	}
	c.aspect = aspect
}

func (c *orbitCameraImpl) SetLastPointer(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPointer = [2]float32{x, y}
	c.hasLastPointer = true
}

func (c *orbitCameraImpl) ClearLastPointer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasLastPointer = false
}

func (c *orbitCameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasInertia {
		return
	}
	if c.inertia > inertiaThreshold {
		offset := common.Scale3(common.Sub3(c.eye, c.target), c.inertia)
		if common.Length3(offset) > degenerateEpsilon {
			c.eye = common.Add3(c.target, offset)
		}
		c.inertia *= c.inertiaDecay
	}
	if c.inertia <= inertiaThreshold {
		c.hasInertia = false
	}
}

func (c *orbitCameraImpl) ViewProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection()
}

func (c *orbitCameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		Eye:      [4]float32{c.eye[0], c.eye[1], c.eye[2], 1},
		ViewProj: c.viewProjection(),
	}
}

// viewProjection computes OpenGLToWGPU * proj * view.
// Caller must hold the mutex.
func (c *orbitCameraImpl) viewProjection() [16]float32 {
	var view, proj, out [16]float32
	common.LookAt(view[:], c.eye, c.target, c.up)
	common.PerspectiveGL(proj[:], c.fovY, c.aspect, c.near, c.far)
	common.Mul4(out[:], proj[:], view[:])
	common.Mul4(out[:], common.OpenGLToWGPU[:], out[:])
	return out
}

// placeEye moves the eye onto the target-eye ray at the current radius.
// The eye != target invariant keeps the direction defined; a degenerate direction leaves the eye in place.
// Caller must hold the mutex.
func (c *orbitCameraImpl) placeEye() {
	dir := common.Sub3(c.eye, c.target)
	if common.Length3(dir) < degenerateEpsilon {
		return
	}
	c.eye = common.Add3(c.target, common.Scale3(common.Normalize3(dir), c.radius))
}
