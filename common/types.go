// package common contains plain data types and math helpers shared by the viewer packages.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned by DecodeRGBA when the payload is not a recognised image format.
var ErrNotAnImage = errors.New("payload is not a supported image")

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the tightly packed RGBA8 pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero values fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
}

// SolidColorTexture returns a 1x1 texture filled with the given linear RGBA color.
// Components are clamped to [0, 1].
//
// Parameters:
//   - rgba: the color
//
// Returns:
//   - TextureStagingData: a single-pixel texture
func SolidColorTexture(rgba [4]float32) TextureStagingData {
	px := make([]byte, 4)
	for i, c := range rgba {
		px[i] = byte(Clamp(c, 0, 1)*255 + 0.5)
	}
	return TextureStagingData{Pixels: px, Width: 1, Height: 1}
}

// DecodeRGBA sniffs and decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP) into RGBA8 pixels.
//
// Parameters:
//   - data: the encoded image bytes
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - string: the detected MIME type
//   - error: ErrNotAnImage if the payload is not an image, or a decode error
func DecodeRGBA(data []byte) (TextureStagingData, string, error) {
	if !filetype.IsImage(data) {
		return TextureStagingData{}, "", ErrNotAnImage
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return TextureStagingData{}, "", fmt.Errorf("failed to sniff image type: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, kind.MIME.Value, fmt.Errorf("failed to decode %s image: %w", kind.MIME.Value, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, kind.MIME.Value, nil
}
