/*
A picture frame is the rectangular output image a photo is branded on.

The frame is rendered by pasting panels on it in order, each panel drawing
over the ones before it. Every Render starts from a blank buffer so nothing
from an earlier layout can survive into the next one.
*/
package frame

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

type Panelled interface {
	Render(dc *gg.Context)
}

// This is the structure which holds the frame layout.
type PictureFrame struct {
	Bounds   image.Rectangle
	W, H     int
	BGColour color.RGBA
	panels   []Panelled
}

// Create a new picture frame at a defined size
func NewPictureFrame(bounds image.Rectangle) *PictureFrame {
	pf := new(PictureFrame)
	pf.Bounds = bounds
	pf.W = pf.Bounds.Dx()
	pf.H = pf.Bounds.Dy()
	pf.BGColour = color.RGBA{A: 255}
	pf.panels = make([]Panelled, 0, 5)
	return pf
}

func (pf *PictureFrame) AddPanel(panel Panelled) {
	pf.panels = append(pf.panels, panel)
}

// Render draws the background and every panel into a new buffer.
func (pf *PictureFrame) Render() *image.RGBA {
	buffer := image.NewRGBA(image.Rect(0, 0, pf.W, pf.H))
	dc := gg.NewContextForRGBA(buffer)
	dc.SetColor(pf.BGColour)
	dc.Clear()
	for _, panel := range pf.panels {
		panel.Render(dc)
	}
	return buffer
}
