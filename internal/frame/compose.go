package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/panel"
	"github.com/drummonds/gpframes/internal/style"
)

var ErrNoSource = errors.New("no source image to compose")

// Layout fixes the geometry of the branded banner. Distances for the
// captions are baselines measured up from the bottom edge.
type Layout struct {
	MaxWidth          int
	BannerHeight      int
	BorderWidth       int
	BorderColour      color.NRGBA
	PrimarySize       float64
	SecondarySize     float64
	PrimaryBaseline   int
	SecondaryBaseline int
	SecondaryCaption  string
	SecondaryAlpha    float64
}

func DefaultLayout() Layout {
	return Layout{
		MaxWidth:          1080,
		BannerHeight:      150,
		BorderWidth:       20,
		BorderColour:      drawing.ColourNameToRGBA["white"],
		PrimarySize:       48,
		SecondarySize:     24,
		PrimaryBaseline:   60,
		SecondaryBaseline: 25,
		SecondaryCaption:  "Sea Pearl Beach Resort, Cox's Bazar",
		SecondaryAlpha:    0.8,
	}
}

// Composited is one finished render. It is not modified after Compose
// returns; a new style or photo produces a new Composited.
type Composited struct {
	Image  *image.RGBA
	Style  style.FrameStyle
	Key    string          // key as requested, which may be unknown
	Found  bool            // Key named a known style
	Banner image.Rectangle // gradient region, always on the bottom edge
}

func (c *Composited) Width() int  { return c.Image.Bounds().Dx() }
func (c *Composited) Height() int { return c.Image.Bounds().Dy() }

type Compositor struct {
	layout Layout
	fonts  *panel.Fonts
}

func NewCompositor(layout Layout) (*Compositor, error) {
	if layout.MaxWidth <= 0 {
		return nil, fmt.Errorf("max width must be positive, got %d", layout.MaxWidth)
	}
	fonts, err := panel.LoadFonts()
	if err != nil {
		return nil, err
	}
	return &Compositor{layout: layout, fonts: fonts}, nil
}

func (c *Compositor) Layout() Layout { return c.layout }

// Compose renders src branded with the style named by key. Every call
// builds the whole frame again from the photo up. Unknown keys use
// style.Fallback; the only error is a missing source.
func (c *Compositor) Compose(src *loader.Source, key string) (*Composited, error) {
	if src.Released() {
		return nil, ErrNoSource
	}
	l := c.layout
	bounds := drawing.ScaleToWidth(src.Image().Bounds(), l.MaxWidth)
	if bounds.Empty() {
		return nil, ErrNoSource
	}
	w, h := bounds.Dx(), bounds.Dy()
	fs, found := style.Resolve(key)

	pf := NewPictureFrame(bounds)
	pf.AddPanel(panel.NewImagePanel(src.Image(), bounds))

	banner := image.Rect(0, h-l.BannerHeight, w, h).Intersect(bounds)
	if l.BannerHeight > 0 {
		gradient := panel.NewGradientPanel(banner, fs.Start, fs.End)
		// Axis is anchored to the nominal banner even when it is clipped.
		gradient.Axis = [2]image.Point{{0, h - l.BannerHeight}, {w, h}}
		pf.AddPanel(gradient)
	}

	cx := float64(w) / 2
	pf.AddPanel(&panel.TextPanel{
		Text:   fs.Caption,
		X:      cx,
		Y:      float64(h - l.PrimaryBaseline),
		Face:   c.fonts.BoldFace(l.PrimarySize),
		Colour: color.White,
	})
	pf.AddPanel(&panel.TextPanel{
		Text:   l.SecondaryCaption,
		X:      cx,
		Y:      float64(h - l.SecondaryBaseline),
		Face:   c.fonts.RegularFace(l.SecondarySize),
		Colour: color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255*l.SecondaryAlpha + 0.5)},
	})
	pf.AddPanel(&panel.BorderPanel{Width: float64(l.BorderWidth), Colour: l.BorderColour})

	return &Composited{
		Image:  pf.Render(),
		Style:  fs,
		Key:    key,
		Found:  found,
		Banner: banner,
	}, nil
}
