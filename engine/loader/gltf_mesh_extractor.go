package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/sloth/engine/model"
)

// importedMesh is one glTF primitive converted to viewer vertices, ready for upload.
type importedMesh struct {
	Name          string
	Vertices      []model.Vertex
	Indices       []uint32
	MaterialIndex int
}

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts the primitives of a parsed document into importedMesh values.
type gltfMeshExtractor interface {
	// ExtractAllMeshes extracts one importedMesh per primitive, in mesh then primitive order.
	//
	// Returns:
	//   - []importedMesh: the extracted meshes
	//   - error: a LoadError if a primitive cannot be drawn or its data is malformed
	ExtractAllMeshes() ([]importedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]importedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var meshes []importedMesh
	for mi, mesh := range doc.Meshes {
		name := mesh.Name
		if name == "" {
			name = fmt.Sprintf("mesh_%d", mi)
		}
		for pi := range mesh.Primitives {
			m, err := e.extractPrimitive(&mesh.Primitives[pi])
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
			}
			m.Name = name
			if len(mesh.Primitives) > 1 {
				m.Name = fmt.Sprintf("%s#%d", name, pi)
			}
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) (importedMesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return importedMesh{}, errorf(ErrorKindUnsupportedFeature, "primitive mode %d is not TRIANGLES", *prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltfAttributePosition]
	if !ok {
		return importedMesh{}, errorf(ErrorKindUnsupportedFeature, "primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadFloats(posIdx, 3)
	if err != nil {
		return importedMesh{}, fmt.Errorf("POSITION: %w", err)
	}

	vertices := make([]model.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = [3]float32{p[0], p[1], p[2]}
	}

	// optional attributes are zeroed when absent
	if err := e.readOptional(prim, gltfAttributeTexCoord0, 2, vertices, func(v *model.Vertex, d [4]float32) {
		v.TexCoords = [2]float32{d[0], d[1]}
	}); err != nil {
		return importedMesh{}, err
	}
	if err := e.readOptional(prim, gltfAttributeColor0, 3, vertices, func(v *model.Vertex, d [4]float32) {
		v.Color = [3]float32{d[0], d[1], d[2]}
	}); err != nil {
		return importedMesh{}, err
	}
	if err := e.readOptional(prim, gltfAttributeNormal, 3, vertices, func(v *model.Vertex, d [4]float32) {
		v.Normal = [3]float32{d[0], d[1], d[2]}
	}); err != nil {
		return importedMesh{}, err
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndices(*prim.Indices)
		if err != nil {
			return importedMesh{}, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(vertices) {
				return importedMesh{}, errorf(ErrorKindParseError, "index %d out of range for %d vertices", idx, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	materialIndex := 0
	if prim.Material != nil {
		materialIndex = *prim.Material
	}

	return importedMesh{
		Vertices:      vertices,
		Indices:       indices,
		MaterialIndex: materialIndex,
	}, nil
}

func (e *gltfMeshExtractorImpl) readOptional(prim *gltfPrimitive, semantic string, n int, vertices []model.Vertex, set func(*model.Vertex, [4]float32)) error {
	idx, ok := prim.Attributes[semantic]
	if !ok {
		return nil
	}
	data, err := e.parser.ReadFloats(idx, n)
	if err != nil {
		return fmt.Errorf("%s: %w", semantic, err)
	}
	if len(data) != len(vertices) {
		return errorf(ErrorKindParseError, "%s has %d elements, POSITION has %d", semantic, len(data), len(vertices))
	}
	for i := range vertices {
		set(&vertices[i], data[i])
	}
	return nil
}
