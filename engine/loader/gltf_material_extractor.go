package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/sloth/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// importedMaterial is a glTF material reduced to what the viewer draws: a base-colour factor and
// an optional base-colour image. Image bytes are either embedded (Data) or fetched later (URI).
type importedMaterial struct {
	Name    string
	Factor  [4]float32
	Sampler common.SamplerStagingData

	// HasTexture reports whether the material references a base-colour image.
	HasTexture bool
	Data       []byte
	URI        string

	// Texture is filled in once the image is decoded, or with the 1x1 factor texture.
	Texture common.TextureStagingData
}

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor extracts material descriptions from a parsed glTF document.
type gltfMaterialExtractor interface {
	// ExtractAllMaterials extracts all materials. A document without materials yields a single
	// default white material so primitives referencing material 0 still draw.
	//
	// Returns:
	//   - []importedMaterial: the extracted materials
	//   - error: a LoadError if a texture reference is malformed
	ExtractAllMaterials() ([]importedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]importedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	if len(doc.Materials) == 0 {
		return []importedMaterial{defaultMaterial()}, nil
	}

	materials := make([]importedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.extractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}
	return materials, nil
}

func defaultMaterial() importedMaterial {
	return importedMaterial{Name: "Default Material", Factor: [4]float32{1, 1, 1, 1}}
}

func (e *gltfMaterialExtractorImpl) extractMaterial(materialIndex int) (importedMaterial, error) {
	doc := e.parser.Document()
	mat := &doc.Materials[materialIndex]

	result := defaultMaterial()
	if mat.Name != "" {
		result.Name = mat.Name
	}

	pbr := mat.PbrMetallicRoughness
	if pbr == nil {
		return result, nil
	}
	if pbr.BaseColorFactor != nil {
		result.Factor = *pbr.BaseColorFactor
	}
	if pbr.BaseColorTexture == nil {
		return result, nil
	}

	texIndex := pbr.BaseColorTexture.Index
	if texIndex < 0 || texIndex >= len(doc.Textures) {
		return result, errorf(ErrorKindParseError, "texture index %d out of range", texIndex)
	}
	tex := &doc.Textures[texIndex]
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(doc.Samplers) {
		result.Sampler = gltfSamplerToStagingData(&doc.Samplers[*tex.Sampler])
	}
	if tex.Source == nil {
		return result, nil
	}

	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return result, errorf(ErrorKindParseError, "image index %d out of range", imageIndex)
	}
	img := &doc.Images[imageIndex]

	switch {
	case img.BufferView != nil:
		// Image embedded in a buffer view (common in GLB)
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return result, fmt.Errorf("image %d: %w", imageIndex, err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, _, err := decodeDataURI(img.URI)
		if err != nil {
			return result, errorf(ErrorKindParseError, "image %d: %v", imageIndex, err)
		}
		result.Data = data
	case img.URI != "":
		result.URI = img.URI
	default:
		return result, errorf(ErrorKindParseError, "image %d has neither bufferView nor uri", imageIndex)
	}
	result.HasTexture = true
	return result, nil
}

// gltfSamplerToStagingData converts a glTF sampler definition into SamplerStagingData.
// Unset fields fall back to the glTF defaults (linear filtering, repeat wrapping).
//
// Parameters:
//   - s: the glTF sampler to convert
//
// Returns:
//   - common.SamplerStagingData: the converted sampler staging data
func gltfSamplerToStagingData(s *gltfSampler) common.SamplerStagingData {
	result := common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}

	if s.MagFilter != nil && *s.MagFilter == gltfFilterNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}

	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			result.MinFilter = wgpu.FilterModeNearest
		}
		switch *s.MinFilter {
		case gltfFilterNearestMipmapLinear, gltfFilterLinearMipmapLinear:
			result.MipmapFilter = wgpu.MipmapFilterModeLinear
		}
	}

	if s.WrapS != nil {
		result.AddressModeU = gltfWrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		result.AddressModeV = gltfWrapToAddressMode(*s.WrapT)
	}
	return result
}

// gltfWrapToAddressMode converts a glTF wrap mode constant to a wgpu AddressMode.
func gltfWrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
