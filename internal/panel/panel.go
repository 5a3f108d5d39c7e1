package panel

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// ImagePanel draws a picture scaled into Location.
type ImagePanel struct {
	img      image.Image
	Location image.Rectangle // Where panel is to be rendered
}

// This does not copy img; the panel only reads it while rendering.
func NewImagePanel(img image.Image, location image.Rectangle) *ImagePanel {
	return &ImagePanel{img: img, Location: location}
}

// Draws the picture into the context buffer, replacing what is underneath
func (p *ImagePanel) Render(dc *gg.Context) {
	dst, ok := dc.Image().(draw.Image)
	if !ok || p.img == nil {
		return
	}
	xdraw.CatmullRom.Scale(dst, p.Location, p.img, p.img.Bounds(), xdraw.Src, nil)
}

// GradientPanel fills Location with a linear gradient running from the
// Axis start point to its end point.
type GradientPanel struct {
	Location   image.Rectangle
	Start, End color.Color
	Axis       [2]image.Point
}

// The default axis runs corner to corner, top left to bottom right.
func NewGradientPanel(location image.Rectangle, start, end color.Color) *GradientPanel {
	return &GradientPanel{
		Location: location,
		Start:    start,
		End:      end,
		Axis:     [2]image.Point{location.Min, location.Max},
	}
}

func (p *GradientPanel) Render(dc *gg.Context) {
	g := gg.NewLinearGradient(
		float64(p.Axis[0].X), float64(p.Axis[0].Y),
		float64(p.Axis[1].X), float64(p.Axis[1].Y),
	)
	g.AddColorStop(0, p.Start)
	g.AddColorStop(1, p.End)
	dc.SetFillStyle(g)
	dc.DrawRectangle(float64(p.Location.Min.X), float64(p.Location.Min.Y),
		float64(p.Location.Dx()), float64(p.Location.Dy()))
	dc.Fill()
}

// TextPanel draws one line of text centred on X with its baseline on Y.
type TextPanel struct {
	Text   string
	X, Y   float64
	Face   font.Face
	Colour color.Color
}

func (p *TextPanel) Render(dc *gg.Context) {
	if p.Text == "" || p.Face == nil {
		return
	}
	dc.SetFontFace(p.Face)
	dc.SetColor(p.Colour)
	dc.DrawStringAnchored(p.Text, p.X, p.Y, 0.5, 0)
}

// BorderPanel strokes the outline of the whole canvas. Half of the stroke
// falls outside the canvas, as with a canvas strokeRect on the edges.
type BorderPanel struct {
	Width  float64
	Colour color.Color
}

func (p *BorderPanel) Render(dc *gg.Context) {
	if p.Width <= 0 {
		return
	}
	dc.SetColor(p.Colour)
	dc.SetLineWidth(p.Width)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	dc.Stroke()
}
