// Package loader turns a user supplied file into a decoded bitmap the
// compositor can draw from.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrDecode = errors.New("image could not be decoded")

// Source is a decoded photo. It is never modified; Release drops the pixel
// data once the caller is done with it.
type Source struct {
	img    image.Image
	width  int
	height int
	format string
}

// NewSource wraps an already decoded image.
func NewSource(img image.Image, format string) (*Source, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrDecode)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrDecode, b.Dx(), b.Dy())
	}
	return &Source{img: img, width: b.Dx(), height: b.Dy(), format: format}, nil
}

func (s *Source) Image() image.Image { return s.img }
func (s *Source) Width() int         { return s.width }
func (s *Source) Height() int        { return s.height }
func (s *Source) Format() string     { return s.format }

// Release drops the reference to the decoded pixels. Safe to call more than
// once and on a nil Source.
func (s *Source) Release() {
	if s == nil {
		return
	}
	s.img = nil
}

func (s *Source) Released() bool {
	return s == nil || s.img == nil
}

// Open decodes the image file at path.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	src, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Decode reads r to the end and decodes it.
func Decode(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes any registered raster format, applying EXIF
// orientation for JPEGs, with a second attempt for WebP variants the
// pure Go decoder rejects.
func DecodeBytes(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
		}
		return NewSource(img, format)
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return NewSource(img, "webp")
	}
	return nil, fmt.Errorf("%w: unknown or unsupported format", ErrDecode)
}
