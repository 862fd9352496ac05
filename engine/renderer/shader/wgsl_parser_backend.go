package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// scalarSizes holds the host-shareable scalars. Each aligns to its own size.
var scalarSizes = map[string]uint64{
	"f32":  4,
	"i32":  4,
	"u32":  4,
	"bool": 4,
}

// shorthandScalars maps the vecNf/vecNi/vecNu suffix to its scalar.
var shorthandScalars = map[byte]string{
	'f': "f32",
	'i': "i32",
	'u': "u32",
}

// vertexFormats is indexed by component count (1-4).
var vertexFormats = map[string][5]wgpu.VertexFormat{
	"f32": {1: wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"i32": {1: wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	"u32": {1: wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
}

var viewDimensions = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"3d":         wgpu.TextureViewDimension3D,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// roundUpAlign rounds value up to a multiple of alignment, which must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// primitiveLayout computes the layout of a scalar, vector or f32 matrix.
// vec3 aligns like vec4; a matCxR is C columns of vecR, each padded to its alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
func primitiveLayout(typeName string) (wgslTypeLayout, bool) {
	if size, ok := scalarSizes[typeName]; ok {
		return wgslTypeLayout{size, size}, true
	}
	if n, elem, ok := parseVector(typeName); ok {
		return vectorLayout(n, scalarSizes[elem]), true
	}
	if cols, rows, ok := parseMatrix(typeName); ok {
		col := vectorLayout(rows, 4)
		return wgslTypeLayout{uint64(cols) * roundUpAlign(col.align, col.size), col.align}, true
	}
	return wgslTypeLayout{}, false
}

func vectorLayout(n int, scalar uint64) wgslTypeLayout {
	align := 2 * scalar
	if n > 2 {
		align = 4 * scalar
	}
	return wgslTypeLayout{uint64(n) * scalar, align}
}

// parseVector accepts vecN<T> and the vecNf, vecNi and vecNu shorthands.
func parseVector(typeName string) (n int, elem string, ok bool) {
	rest, found := strings.CutPrefix(typeName, "vec")
	if !found || len(rest) < 2 || rest[0] < '2' || rest[0] > '4' {
		return 0, "", false
	}
	n = int(rest[0] - '0')

	if tail := rest[1:]; len(tail) == 1 {
		elem, ok = shorthandScalars[tail[0]]
	} else if base, param := splitTypeParams(tail); base == "" {
		elem = param
		_, ok = scalarSizes[elem]
	}
	return n, elem, ok
}

// parseMatrix accepts matCxR<f32> and matCxRf.
func parseMatrix(typeName string) (cols, rows int, ok bool) {
	rest, found := strings.CutPrefix(typeName, "mat")
	if !found || len(rest) < 4 || rest[1] != 'x' {
		return 0, 0, false
	}
	cols, rows = int(rest[0]-'0'), int(rest[2]-'0')
	if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
		return 0, 0, false
	}
	switch rest[3:] {
	case "f", "<f32>":
		return cols, rows, true
	}
	return 0, 0, false
}

// vertexFormat maps a vertex attribute type to its format and byte size.
func vertexFormat(typeName string) (wgpu.VertexFormat, uint64, bool) {
	n, elem := 1, typeName
	if vn, ve, ok := parseVector(typeName); ok {
		n, elem = vn, ve
	}
	formats, ok := vertexFormats[elem]
	if !ok {
		return 0, 0, false
	}
	return formats[n], uint64(n) * 4, true
}

// resolveTypeLayout resolves a primitive, a known struct or an array<T, N>.
// Runtime-sized arrays resolve to one element stride.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "CameraUniform", "array<vec4<f32>, 4>"
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false for unknown types
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := primitiveLayout(typeName); ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	base, param := splitTypeParams(typeName)
	if base != "array" || param == "" {
		return wgslTypeLayout{}, false
	}
	params := splitAtTopLevelCommas(param)
	elem, ok := resolveTypeLayout(strings.TrimSpace(params[0]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	if len(params) == 1 {
		return wgslTypeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(params[1]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{count * stride, elem.align}, true
}

// computeStructLayout lays out members at their aligned offsets and rounds the total up to the
// largest member alignment. @builtin members are skipped.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fieldLayout.align, offset) + fieldLayout.size
		maxAlign = max(maxAlign, fieldLayout.align)
	}

	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves struct layouts until no more progress is made, so structs may
// nest structs declared later in the source. Unresolvable structs are left out.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for progress := true; progress && len(remaining) > 0; {
		progress = false
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
	}

	return resolved
}

// classifyResource builds the layout entry for one declaration. Buffers are recognized by address
// space, samplers and textures by type name. Visibility is left for the caller.
func classifyResource(binding uint32, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		dim := strings.TrimPrefix(base, "texture_")
		if d, ok := strings.CutPrefix(dim, "depth_"); ok {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
			dim = d
		}
		if d, ok := strings.CutPrefix(dim, "multisampled_"); ok {
			entry.Texture.Multisampled = true
			dim = d
		}
		entry.Texture.ViewDimension = viewDimensions[dim]
		if st, ok := sampleTypes[param]; ok {
			entry.Texture.SampleType = st
		}
	}

	return entry
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
// A type without parameters comes back whole with an empty param.
func splitTypeParams(typeName string) (base, param string) {
	base, rest, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(rest, ">"))
}

// stripComments removes // line comments and nestable /* */ block comments in one pass.
// Newlines ending a line comment are kept.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	for i := 0; i < len(source); i++ {
		next := byte(0)
		if i+1 < len(source) {
			next = source[i+1]
		}

		switch {
		case source[i] == '/' && next == '*':
			depth++
			i++
		case source[i] == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
		case source[i] == '/' && next == '/':
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether every member carries @location and none is a @builtin,
// which tells vertex inputs apart from stage outputs carrying @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	if len(ps.fields) == 0 {
		return false
	}
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			return false
		}
	}
	return true
}

// buildVertexBufferLayout packs the members of a vertex input struct tightly in declaration order.
// The step mode is always per-vertex since WGSL does not declare it.
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}

	for _, f := range ps.fields {
		format, size, ok := vertexFormat(f.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += size
	}
	return layout, true
}

// splitAtTopLevelCommas splits at commas outside angle brackets, so "a: array<f32, 4>, b: f32"
// yields two members.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range s {
		switch {
		case c == '<':
			depth++
		case c == '>' && depth > 0:
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
