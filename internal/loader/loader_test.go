package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src, err := DecodeBytes(encodePNG(t, createTestImage(200, 150)))
	require.NoError(t, err)
	assert.Equal(t, 200, src.Width())
	assert.Equal(t, 150, src.Height())
	assert.Equal(t, "png", src.Format())
	assert.False(t, src.Released())

	r, g, b, _ := src.Image().At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, createTestImage(64, 48), &jpeg.Options{Quality: 90}))

	src, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, src.Width())
	assert.Equal(t, 48, src.Height())
	assert.Equal(t, "jpeg", src.Format())
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, createTestImage(30, 20)))

	src, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "bmp", src.Format())
	assert.Equal(t, 30, src.Width())
}

func TestDecodeGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image at all"), {0x89, 'P', 'N', 'G'}} {
		src, err := DecodeBytes(data)
		assert.Nil(t, src)
		assert.ErrorIs(t, err, ErrDecode)
	}
}

func TestDecodeTruncatedPNG(t *testing.T) {
	data := encodePNG(t, createTestImage(100, 100))
	_, err := DecodeBytes(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrDecode)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, createTestImage(40, 30)), 0o644))

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 40, src.Width())

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	_, err = Open(bad)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestRelease(t *testing.T) {
	src, err := NewSource(createTestImage(10, 10), "png")
	require.NoError(t, err)
	src.Release()
	assert.True(t, src.Released())
	assert.Nil(t, src.Image())
	// dimensions survive release for logging
	assert.Equal(t, 10, src.Width())
	src.Release()

	var none *Source
	none.Release()
	assert.True(t, none.Released())
}

func TestNewSourceRejectsEmpty(t *testing.T) {
	_, err := NewSource(image.NewRGBA(image.Rectangle{}), "png")
	assert.ErrorIs(t, err, ErrDecode)
	_, err = NewSource(nil, "png")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestOrient(t *testing.T) {
	img := createTestImage(40, 20)

	same := Orient(img, 1)
	assert.Equal(t, img.Bounds(), same.Bounds())

	rotated := Orient(img, 6)
	assert.Equal(t, 20, rotated.Bounds().Dx())
	assert.Equal(t, 40, rotated.Bounds().Dy())

	flipped := Orient(img, 2)
	r, _, b, _ := flipped.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), b)
}
