package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeRGBA(t *testing.T) {
	data := encodePNG(t, 3, 2, color.RGBA{R: 255, G: 128, B: 0, A: 255})

	tex, mime, err := DecodeRGBA(data)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	require.Len(t, tex.Pixels, 3*2*4)
	assert.Equal(t, []byte{255, 128, 0, 255}, tex.Pixels[:4])
}

func TestDecodeRGBARejectsNonImage(t *testing.T) {
	_, _, err := DecodeRGBA([]byte(`{"asset":{"version":"2.0"}}`))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestSolidColorTexture(t *testing.T) {
	tex := SolidColorTexture([4]float32{1, 0.5, -1, 2})
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 128, 0, 255}, tex.Pixels)
}
