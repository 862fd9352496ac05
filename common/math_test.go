package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const tol = float32(1e-5)

func TestMul4Identity(t *testing.T) {
	var id [16]float32
	Identity(id[:])

	m := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	var out [16]float32
	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := [3]float32{0, 1, 2}
	var view [16]float32
	LookAt(view[:], eye, [3]float32{}, [3]float32{0, 1, 0})

	p := MulVec4(view[:], [4]float32{eye[0], eye[1], eye[2], 1})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, 0, p[2], 1e-5)

	// the target sits straight ahead on -Z in view space
	q := MulVec4(view[:], [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, q[0], 1e-5)
	assert.InDelta(t, 0, q[1], 1e-5)
	assert.InDelta(t, -math32.Sqrt(5), q[2], 1e-5)
}

func TestOpenGLToWGPUDepthRange(t *testing.T) {
	var proj, vp [16]float32
	PerspectiveGL(proj[:], math32.Pi/4, 1, 0.1, 100)
	Mul4(vp[:], OpenGLToWGPU[:], proj[:])

	near := MulVec4(vp[:], [4]float32{0, 0, -0.1, 1})
	far := MulVec4(vp[:], [4]float32{0, 0, -100, 1})

	assert.InDelta(t, 0, near[2]/near[3], 1e-4)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)
}

func TestRotateAxisAngle3(t *testing.T) {
	v := RotateAxisAngle3([3]float32{1, 0, 0}, [3]float32{0, 1, 0}, math32.Pi/2)
	assert.True(t, ApproxEqual3(v, [3]float32{0, 0, -1}, tol), "got %v", v)

	v = RotateAxisAngle3([3]float32{0, 3, 0}, [3]float32{0, 1, 0}, 1.3)
	assert.True(t, ApproxEqual3(v, [3]float32{0, 3, 0}, tol), "rotation about own axis must be identity, got %v", v)
}

func TestQuatToMat4IdentityRotation(t *testing.T) {
	var m, id [16]float32
	QuatToMat4(m[:], [4]float32{0, 0, 0, 1}, [3]float32{})
	Identity(id[:])
	assert.Equal(t, id, m)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(2), Clamp(float32(-3), 2, 10))
	assert.Equal(t, float32(10), Clamp(float32(15), 2, 10))
	assert.Equal(t, 5, Clamp(5, 2, 10))
}
