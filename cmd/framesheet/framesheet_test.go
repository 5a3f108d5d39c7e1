package main

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

func TestSheetHasEveryStyle(t *testing.T) {
	c, err := frame.NewCompositor(frame.DefaultLayout())
	require.NoError(t, err)
	src, err := loader.NewSource(image.NewRGBA(image.Rect(0, 0, 400, 300)), "png")
	require.NoError(t, err)

	img, err := sheet(c, src, 200, 10)
	require.NoError(t, err)

	n := len(style.All())
	assert.Equal(t, 10+n*(200+10), img.Bounds().Dx())
	assert.Equal(t, 150+20, img.Bounds().Dy())
	assert.Equal(t, sheetBackground, img.NRGBAAt(5, 5))
	// bottom of the first cell is the white border
	assert.GreaterOrEqual(t, img.NRGBAAt(10+100, 10+149).R, uint8(0xe0))
}
