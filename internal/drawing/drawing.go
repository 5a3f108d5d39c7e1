package drawing

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
)

// Calculated linear scaling of an rectangle from its original size to
// a max width and max height of a desired output.
// The whole picture is scaled inside the rectangle with blank space to
// right and top
func ScaleImageInside(bounds image.Rectangle, maxW, maxH int) image.Rectangle {
	imgW := bounds.Dx()
	imgH := bounds.Dy()
	if imgW <= 0 || imgH <= 0 {
		return image.Rectangle{}
	}
	ratio := float64(maxW) / float64(imgW)
	if r := float64(maxH) / float64(imgH); r < ratio {
		ratio = r
	}
	scaledW := int(ratio * float64(imgW))
	scaledH := int(ratio * float64(imgH))
	return image.Rect(0, 0, scaledW, scaledH)
}

// ScaleToWidth scales a rectangle so that its width is exactly maxW, up or
// down, keeping the aspect ratio. The height is rounded and never below 1.
func ScaleToWidth(bounds image.Rectangle, maxW int) image.Rectangle {
	imgW := bounds.Dx()
	imgH := bounds.Dy()
	if imgW <= 0 || imgH <= 0 || maxW <= 0 {
		return image.Rectangle{}
	}
	scale := float64(maxW) / float64(imgW)
	h := int(math.Round(float64(imgH) * scale))
	if h < 1 {
		h = 1
	}
	return image.Rect(0, 0, maxW, h)
}

// Thumbnail shrinks img to fit inside maxW x maxH. Images already small
// enough are returned unchanged.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)
}

// ParseHex reads a CSS style colour, #RRGGBB or #RGB.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats c as #RRGGBB, ignoring alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MustParseHex is ParseHex for static tables.
func MustParseHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColour accepts a name from ColourNameToRGBA or a hex colour.
func ParseColour(s string) (color.NRGBA, error) {
	if c, ok := ColourNameToRGBA[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return ParseHex(s)
}

var ColourNameToRGBA = map[string]color.NRGBA{
	"darkgray": {R: 0x55, G: 0x57, B: 0x53, A: 0xff},
	"red":      {R: 0xEF, G: 0x29, B: 0x29, A: 0xff},
	"green":    {R: 0x8A, G: 0xE2, B: 0x34, A: 0xff},
	"yellow":   {R: 0xFC, G: 0xE9, B: 0x4F, A: 0xff},
	"blue":     {R: 0x72, G: 0x9F, B: 0xCF, A: 0xff},
	"magenta":  {R: 0xEE, G: 0x38, B: 0xDA, A: 0xff},
	"cyan":     {R: 0x34, G: 0xE2, B: 0xE2, A: 0xff},
	"white":    {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xff},
}
