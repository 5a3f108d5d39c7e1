package panel

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the parsed caption typefaces. Faces are created per render
// since a font.Face caches glyphs and is not safe to share.
type Fonts struct {
	Bold    *truetype.Font
	Regular *truetype.Font
}

// LoadFonts parses the Go fonts bundled with x/image, so output does not
// depend on what is installed on the host.
func LoadFonts() (*Fonts, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	return &Fonts{Bold: bold, Regular: regular}, nil
}

func (f *Fonts) BoldFace(size float64) font.Face {
	return truetype.NewFace(f.Bold, &truetype.Options{Size: size})
}

func (f *Fonts) RegularFace(size float64) font.Face {
	return truetype.NewFace(f.Regular, &truetype.Options{Size: size})
}
