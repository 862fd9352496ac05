package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	resolver       AssetResolver
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser parses glTF JSON or GLB data, loads its buffers and performs typed accessor reads.
// This is internal to the loader package.
type gltfParser interface {
	// Parse parses a glTF document and loads every buffer it references.
	// GLB is detected by its magic number.
	//
	// Parameters:
	//   - ctx: cancels external buffer fetches
	//   - data: glTF JSON or GLB bytes
	//
	// Returns:
	//   - error: a LoadError describing the failure
	Parse(ctx context.Context, data []byte) error

	// Document returns the parsed glTF document, or nil before a successful Parse.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// ReadBufferView returns a copy of the bytes of a buffer view.
	//
	// Parameters:
	//   - index: the buffer view index
	//
	// Returns:
	//   - []byte: the raw bytes
	//   - error: error if the view is out of range
	ReadBufferView(index int) ([]byte, error)

	// ReadFloats reads an accessor as n-component float vectors. FLOAT data is read as is and
	// normalized integer data is mapped to [0, 1] or [-1, 1].
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - n: the expected component count
	//
	// Returns:
	//   - [][4]float32: one entry per element; components past n are zero
	//   - error: error if reading fails
	ReadFloats(accessorIndex, n int) ([][4]float32, error)

	// ReadIndices reads an index accessor, widening UNSIGNED_BYTE and UNSIGNED_SHORT to uint32.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: error if reading fails
	ReadIndices(accessorIndex int) ([]uint32, error)

}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a parser that fetches external buffers through resolver.
//
// Parameters:
//   - resolver: resolves buffer URIs relative to the scene file
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser(resolver AssetResolver) gltfParser {
	return &gltfParserImpl{resolver: resolver}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(ctx context.Context, data []byte) error {
	jsonData := data
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		var err error
		jsonData, p.glbBinaryChunk, err = splitGLB(data)
		if err != nil {
			return errorf(ErrorKindParseError, "%v", err)
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return errorf(ErrorKindParseError, "failed to parse glTF JSON: %v", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errorf(ErrorKindParseError, "invalid glTF version %q: must be 2.x", doc.Asset.Version)
	}
	if len(doc.ExtensionsRequired) > 0 {
		return errorf(ErrorKindUnsupportedFeature, "required extensions %v are not supported", doc.ExtensionsRequired)
	}

	if err := p.loadBuffers(ctx, &doc); err != nil {
		return err
	}

	p.document = &doc
	return nil
}

// splitGLB returns the JSON and BIN chunks of a GLB file.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func splitGLB(data []byte) (jsonData, binData []byte, err error) {
	if len(data) < 12 {
		return nil, nil, errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)
	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Version != gltfGLBVersion {
		return nil, nil, fmt.Errorf("invalid GLB version %d: must be 2", header.Version)
	}

	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}

		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return nil, nil, fmt.Errorf("chunk length %d exceeds file size", chunkHeader.ChunkLength)
		}
		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return nil, nil, errors.New("GLB file missing JSON chunk")
	}
	return jsonData, binData, nil
}

// loadBuffers loads all buffer data from the GLB binary chunk, data URIs or the resolver.
func (p *gltfParserImpl) loadBuffers(ctx context.Context, doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "":
			if i != 0 || p.glbBinaryChunk == nil {
				return errorf(ErrorKindParseError, "buffer %d has no URI and no GLB binary chunk", i)
			}
			buf.Data = p.glbBinaryChunk
		case strings.HasPrefix(buf.URI, "data:"):
			data, _, err := decodeDataURI(buf.URI)
			if err != nil {
				return errorf(ErrorKindParseError, "buffer %d: %v", i, err)
			}
			buf.Data = data
		default:
			if p.resolver == nil {
				return errorf(ErrorKindNotFound, "buffer %d references %q but no resolver is set", i, buf.URI)
			}
			data, err := p.resolver.Fetch(ctx, buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return errorf(ErrorKindParseError, "buffer %d: size mismatch: have %d bytes, want %d", i, len(buf.Data), buf.ByteLength)
		}
	}
	return nil
}

// decodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", errors.New("not a data URI")
	}
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", errors.New("malformed data URI: no comma found")
	}

	header := uri[5:commaIdx]
	encoded := uri[commaIdx+1:]
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %q", header)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}

func (p *gltfParserImpl) ReadBufferView(index int) ([]byte, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	data, _, err := p.bufferView(index)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

// bufferView returns the bytes a buffer view covers, without copying, and its byte stride.
// Every range in the document is untrusted, so negative and overflowing values are rejected
// before any slicing.
func (p *gltfParserImpl) bufferView(index int) ([]byte, int, error) {
	doc := p.document
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, 0, errorf(ErrorKindParseError, "bufferView index %d out of range", index)
	}
	bv := &doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, 0, errorf(ErrorKindParseError, "buffer index %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteLength > len(data) || bv.ByteOffset > len(data)-bv.ByteLength {
		return nil, 0, errorf(ErrorKindParseError, "bufferView %d exceeds buffer bounds: offset=%d length=%d bufSize=%d",
			index, bv.ByteOffset, bv.ByteLength, len(data))
	}
	stride := 0
	if bv.ByteStride != nil {
		if *bv.ByteStride < 0 {
			return nil, 0, errorf(ErrorKindParseError, "bufferView %d has negative byteStride %d", index, *bv.ByteStride)
		}
		stride = *bv.ByteStride
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], stride, nil
}

func (p *gltfParserImpl) accessor(accessorIndex int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, errorf(ErrorKindParseError, "accessor index %d out of range", accessorIndex)
	}
	return &p.document.Accessors[accessorIndex], nil
}

// readAccessorData returns the accessor's elements tightly packed, honouring byteStride.
func (p *gltfParserImpl) readAccessorData(acc *gltfAccessor) ([]byte, error) {
	if acc.Sparse != nil {
		return nil, errorf(ErrorKindUnsupportedFeature, "sparse accessors are not supported")
	}
	if acc.BufferView == nil {
		return nil, errorf(ErrorKindUnsupportedFeature, "accessor has no bufferView")
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return nil, errorf(ErrorKindParseError, "accessor has negative count %d or byteOffset %d", acc.Count, acc.ByteOffset)
	}
	view, stride, err := p.bufferView(*acc.BufferView)
	if err != nil {
		return nil, err
	}

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, errorf(ErrorKindParseError, "invalid accessor type %s/%d", acc.Type, acc.ComponentType)
	}
	if stride == 0 {
		stride = elementSize
	}
	if stride < elementSize {
		return nil, errorf(ErrorKindParseError, "byteStride %d is smaller than the %d-byte element", stride, elementSize)
	}

	// (count-1)*stride is compared against what is left so it cannot overflow
	if acc.Count > 0 {
		if acc.ByteOffset > len(view)-elementSize || acc.Count-1 > (len(view)-acc.ByteOffset-elementSize)/stride {
			return nil, errorf(ErrorKindParseError, "accessor of %d elements exceeds its %d-byte bufferView", acc.Count, len(view))
		}
	}

	result := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		src := acc.ByteOffset + i*stride
		copy(result[i*elementSize:(i+1)*elementSize], view[src:src+elementSize])
	}
	return result, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex, n int) ([][4]float32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	count := gltfAccessorTypeComponentCount(acc.Type)
	if count < n || count > 4 {
		return nil, errorf(ErrorKindParseError, "accessor %d is %s, want %d components", accessorIndex, acc.Type, n)
	}
	if acc.ComponentType != gltfComponentTypeFloat && !acc.Normalized {
		return nil, errorf(ErrorKindUnsupportedFeature, "accessor %d has non-normalized integer components", accessorIndex)
	}

	data, err := p.readAccessorData(acc)
	if err != nil {
		return nil, err
	}

	size := gltfComponentTypeSize(acc.ComponentType)
	result := make([][4]float32, acc.Count)
	for i := range result {
		for c := 0; c < count; c++ {
			result[i][c] = readComponent(data[(i*count+c)*size:], acc.ComponentType)
		}
	}
	return result, nil
}

// readComponent decodes one component, normalizing integers per the glTF rules.
func readComponent(b []byte, componentType int) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		return float32(b[0]) / 255
	case gltfComponentTypeUnsignedShort:
		return float32(binary.LittleEndian.Uint16(b)) / 65535
	case gltfComponentTypeByte:
		return max(float32(int8(b[0]))/127, -1)
	case gltfComponentTypeShort:
		return max(float32(int16(binary.LittleEndian.Uint16(b)))/32767, -1)
	default:
		return 0
	}
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, errorf(ErrorKindParseError, "index accessor is not SCALAR: type=%s", acc.Type)
	}

	data, err := p.readAccessorData(acc)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range result {
			result[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, errorf(ErrorKindParseError, "unsupported index component type: %d", acc.ComponentType)
	}
	return result, nil
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4, gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
