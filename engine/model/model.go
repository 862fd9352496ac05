package model

import (
	"fmt"
	"sync"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name      string
	source    string
	meshes    []Mesh
	materials []Material
	released  bool
}

// Model defines the interface for a loaded scene: an ordered list of meshes and the materials they
// reference. A Model is produced once by the SceneLoader and is immutable until Release.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Source retrieves the source string the model was loaded from.
	//
	// Returns:
	//   - string: the local name or URL
	Source() string

	// Meshes retrieves the meshes in the order the loader produced them.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials retrieves the materials referenced by MaterialIndex.
	//
	// Returns:
	//   - []Material: the materials
	Materials() []Material

	// MaterialFor resolves the material a mesh binds.
	//
	// Parameters:
	//   - mesh: a mesh of this model
	//
	// Returns:
	//   - Material: the mesh's material
	//   - error: an error if the mesh's material index is out of range
	MaterialFor(mesh Mesh) (Material, error)

	// Release releases the GPU resources of every mesh and material. Further calls are no-ops.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{mu: &sync.Mutex{}}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Source() string {
	return m.source
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []Material {
	return m.materials
}

func (m *model) MaterialFor(mesh Mesh) (Material, error) {
	if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.materials) {
		return Material{}, fmt.Errorf("mesh %q references material %d of %d", mesh.Name, mesh.MaterialIndex, len(m.materials))
	}
	return m.materials[mesh.MaterialIndex], nil
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return
	}
	m.released = true

	for _, mesh := range m.meshes {
		if mesh.Provider != nil {
			mesh.Provider.Release()
		}
	}
	for _, mat := range m.materials {
		if mat.Provider != nil {
			mat.Provider.Release()
		}
	}
}
