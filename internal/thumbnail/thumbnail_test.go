package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestGenerateLandscapeJPEG(t *testing.T) {
	data := encodeJPEG(t, 400, 100)

	thumb, err := Generate(data, "photo.jpg")
	require.NoError(t, err)
	require.NotNil(t, thumb)

	img, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)

	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestGeneratePortraitPNG(t *testing.T) {
	data := encodePNG(t, 100, 400)

	thumb, err := Generate(data, "photo.png")
	require.NoError(t, err)
	require.NotNil(t, thumb)

	img, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)

	assert.Equal(t, "png", format)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestGenerateUnsupportedExtension(t *testing.T) {
	thumb, err := Generate([]byte("whatever"), "animation.gif")

	assert.NoError(t, err)
	assert.Nil(t, thumb)
}

func TestGenerateUndecodableImage(t *testing.T) {
	_, err := Generate([]byte("this is not an image"), "broken.jpg")

	assert.Error(t, err)
}
