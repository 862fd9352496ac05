package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(buf []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
}

func TestVertexLayoutMatchesStruct(t *testing.T) {
	v := Vertex{
		Position:  [3]float32{1, 2, 3},
		Color:     [3]float32{0.1, 0.2, 0.3},
		TexCoords: [2]float32{0.5, 0.75},
		Normal:    [3]float32{0, 0, 1},
	}
	require.Equal(t, 44, v.Size())

	buf := v.Marshal()
	require.Len(t, buf, 44)

	layout := VertexBufferLayout()
	assert.Equal(t, uint64(v.Size()), layout.ArrayStride)
	require.Len(t, layout.Attributes, 4)
	assert.Equal(t, float32(1), readF32(buf, int(layout.Attributes[0].Offset)/4))
	assert.Equal(t, float32(0.1), readF32(buf, int(layout.Attributes[1].Offset)/4))
	assert.Equal(t, float32(0.5), readF32(buf, int(layout.Attributes[2].Offset)/4))
	assert.Equal(t, float32(1), readF32(buf, int(layout.Attributes[3].Offset)/4+2))
	assert.Contains(t, GPUVertexSource, "@location(3) normal")
}

func TestMarshalVerticesIsContiguous(t *testing.T) {
	vs := []Vertex{{Position: [3]float32{1, 0, 0}}, {Position: [3]float32{2, 0, 0}}}
	buf := MarshalVertices(vs)
	require.Len(t, buf, 88)
	assert.Equal(t, float32(2), readF32(buf, 11))

	idx := MarshalIndices([]uint32{0, 1, 65536})
	require.Len(t, idx, 12)
	assert.Equal(t, uint32(65536), binary.LittleEndian.Uint32(idx[8:]))
}

func TestInstanceLayoutUsesLocationsFiveToEight(t *testing.T) {
	layout := InstanceBufferLayout()
	var raw InstanceRaw
	assert.Equal(t, uint64(raw.Size()), layout.ArrayStride)
	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(5+i), attr.ShaderLocation)
		assert.Equal(t, uint64(16*i), attr.Offset)
	}
}

func TestIdentityInstanceToRaw(t *testing.T) {
	raw := IdentityInstance().ToRaw()
	assert.Equal(t, [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, raw.Model)
}

func TestInstanceToRawTranslatesAndRotates(t *testing.T) {
	s := float32(math.Sqrt2 / 2)
	inst := Instance{Position: [3]float32{3, 4, 5}, Rotation: [4]float32{0, s, 0, s}}
	raw := inst.ToRaw()

	assert.Equal(t, float32(3), raw.Model[12])
	assert.Equal(t, float32(4), raw.Model[13])
	assert.Equal(t, float32(5), raw.Model[14])
	// a quarter turn about +Y takes +X to -Z
	assert.InDelta(t, 0, raw.Model[0], 1e-6)
	assert.InDelta(t, -1, raw.Model[2], 1e-6)

	buf := MarshalInstances([]Instance{IdentityInstance(), inst})
	require.Len(t, buf, 128)
	assert.Equal(t, float32(3), readF32(buf, 16+12))
}

func TestMaterialFactorMarshal(t *testing.T) {
	f := GPUMaterialFactor{Diffuse: [4]float32{1, 0.5, 0.25, 1}}
	buf := f.Marshal()
	require.Len(t, buf, 16)
	assert.Equal(t, float32(0.25), readF32(buf, 2))
	assert.Contains(t, GPUMaterialFactorSource, "diffuse")
}

func TestModelMaterialFor(t *testing.T) {
	mat := Material{Name: "body", Provider: bind_group_provider.NewBindGroupProvider("body", bind_group_provider.WithSharedBindGroupLayout("material", nil))}
	m := NewModel(
		WithName("duck"),
		WithMeshes(Mesh{Name: "a", MaterialIndex: 0}, Mesh{Name: "b", MaterialIndex: 3}),
		WithMaterials(mat),
	)

	got, err := m.MaterialFor(m.Meshes()[0])
	require.NoError(t, err)
	assert.Equal(t, "body", got.Name)
	assert.Equal(t, "material", got.LayoutID())

	_, err = m.MaterialFor(m.Meshes()[1])
	assert.Error(t, err)
}

func TestModelReleaseIsIdempotent(t *testing.T) {
	mesh := Mesh{Name: "m", Provider: bind_group_provider.NewBindGroupProvider("m", bind_group_provider.WithIndexCount(3))}
	m := NewModel(WithMeshes(mesh), WithMaterials(Material{Name: "x"}))

	assert.Equal(t, 3, m.Meshes()[0].IndexCount())
	assert.NotPanics(t, func() {
		m.Release()
		m.Release()
	})
	assert.Equal(t, 0, Mesh{}.IndexCount())
}
