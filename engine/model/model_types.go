package model

import (
	"github.com/Carmen-Shannon/sloth/common"
	"github.com/Carmen-Shannon/sloth/engine/renderer/bind_group_provider"
)

// Instance places one copy of a model in world space.
type Instance struct {
	// Position is the world-space translation.
	Position [3]float32

	// Rotation is the orientation as a unit quaternion (x, y, z, w).
	Rotation [4]float32
}

// IdentityInstance returns an instance at the origin with no rotation.
func IdentityInstance() Instance {
	return Instance{Rotation: [4]float32{0, 0, 0, 1}}
}

// ToRaw converts the instance to its per-instance model matrix.
//
// Returns:
//   - InstanceRaw: the column-major model matrix
func (i Instance) ToRaw() InstanceRaw {
	var raw InstanceRaw
	common.QuatToMat4(raw.Model[:], i.Rotation, i.Position)
	return raw
}

// MarshalInstances serializes instances into one contiguous per-instance buffer.
//
// Parameters:
//   - instances: the instances to serialize
//
// Returns:
//   - []byte: len(instances)*64 bytes
func MarshalInstances(instances []Instance) []byte {
	buf := make([]byte, 0, len(instances)*64)
	for _, inst := range instances {
		raw := inst.ToRaw()
		buf = append(buf, raw.Marshal()...)
	}
	return buf
}

// Mesh is one drawable primitive of a Model. Its provider holds the uploaded vertex and index
// buffers and the index count.
type Mesh struct {
	// Name is the mesh name from the scene file, or a generated one.
	Name string

	// Provider holds the GPU vertex buffer, index buffer and index count.
	Provider bind_group_provider.BindGroupProvider

	// MaterialIndex indexes into the owning Model's materials.
	MaterialIndex int
}

// IndexCount returns the number of u32 indices drawn for this mesh.
func (m Mesh) IndexCount() int {
	if m.Provider == nil {
		return 0
	}
	return m.Provider.IndexCount()
}

// Material is a compiled bind group (texture, sampler, diffuse factor) and its layout.
type Material struct {
	// Name is the material name from the scene file, or a generated one.
	Name string

	// Provider holds the bind group, the layout it was created against, and the texture,
	// sampler and factor buffer it references.
	Provider bind_group_provider.BindGroupProvider

	// DiffuseFactor is the base colour factor written to the factor uniform.
	DiffuseFactor [4]float32
}

// LayoutID returns the identifier of the material's bind group layout.
func (m Material) LayoutID() string {
	if m.Provider == nil {
		return ""
	}
	return m.Provider.LayoutID()
}
