package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput and InstanceInput structs.
// Matches the Vertex and InstanceRaw layouts exactly.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// VertexLayoutID identifies the combined vertex + instance layout in pipeline keys.
const VertexLayoutID = "vertex(pos,color,uv,normal)+instance(mat4)"

// Vertex is the GPU-aligned representation of a single mesh vertex.
// Size: 44 bytes (tightly packed vertex attributes).
type Vertex struct {
	Position  [3]float32 // offset  0: location 0
	Color     [3]float32 // offset 12: location 1
	TexCoords [2]float32 // offset 24: location 2
	Normal    [3]float32 // offset 32: location 3
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (44)
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: 44-byte buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	fields := [11]float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.Color[0], v.Color[1], v.Color[2],
		v.TexCoords[0], v.TexCoords[1],
		v.Normal[0], v.Normal[1], v.Normal[2],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// MarshalVertices serializes a vertex slice into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*44 bytes
func MarshalVertices(vertices []Vertex) []byte {
	var stride Vertex
	size := stride.Size()
	buf := make([]byte, len(vertices)*size)
	for i := range vertices {
		vertices[i].put(buf[i*size:])
	}
	return buf
}

// MarshalIndices serializes u32 indices into a little-endian byte buffer.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: len(indices)*4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// VertexBufferLayout describes Vertex as a per-vertex buffer at locations 0-3.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for vertex slot 0
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 44,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
		},
	}
}

// InstanceRaw is the GPU-aligned per-instance model matrix, column-major.
// Size: 64 bytes.
type InstanceRaw struct {
	Model [16]float32
}

// Size returns the size of the InstanceRaw struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (64)
func (r *InstanceRaw) Size() int {
	return int(unsafe.Sizeof(*r))
}

// Marshal serializes the InstanceRaw into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (r *InstanceRaw) Marshal() []byte {
	buf := make([]byte, r.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(r.Model[i]))
	}
	return buf
}

// InstanceBufferLayout describes InstanceRaw as a per-instance buffer at locations 5-8, one
// vec4 column per location.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout for vertex slot 1
func InstanceBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 64,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 7},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 8},
		},
	}
}

// GPUMaterialFactorSource is the WGSL definition of the MaterialFactor uniform.
//
//go:embed assets/material_factor.wgsl
var GPUMaterialFactorSource string

// GPUMaterialFactor is the material's diffuse factor uniform bound at binding 2.
// Size: 16 bytes.
type GPUMaterialFactor struct {
	Diffuse [4]float32
}

// Size returns the size of the GPUMaterialFactor struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (16)
func (g *GPUMaterialFactor) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialFactor into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUMaterialFactor) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Diffuse[i]))
	}
	return buf
}
