package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBGRX(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	img.Set(1, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	dst := make([]byte, 2*2*4)
	toBGRX(img, 1, 2, dst)
	assert.Equal(t, []byte{3, 2, 1, 0}, dst[0:4])
	assert.Equal(t, []byte{0, 0, 0, 0}, dst[4:8])
	assert.Equal(t, []byte{30, 20, 10, 0}, dst[12:16])
}

func TestStripRows(t *testing.T) {
	assert.Equal(t, 51, stripRows(960))
	assert.LessOrEqual(t, stripRows(960)*960*4, maxRequestBytes)
	assert.Equal(t, 1, stripRows(1<<20))
}

func TestWindowSize(t *testing.T) {
	assert.Equal(t, image.Rect(0, 0, 960, 720), windowSize(image.Rect(0, 0, 1080, 810)))
	assert.Equal(t, image.Rect(0, 0, 960, 1), windowSize(image.Rect(0, 0, 1080, 1)))
	assert.Equal(t, image.Rect(0, 0, 1, 960), windowSize(image.Rect(0, 0, 1, 5000)))
	assert.Equal(t, image.Rect(0, 0, 1, 1), windowSize(image.Rectangle{}))
}
