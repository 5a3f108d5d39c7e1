// framesheet renders one photo in every frame style, side by side, so the
// styles can be reviewed together.
package main

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/pflag"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/export"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

var sheetBackground = color.NRGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 0xff}

// sheet composes src with every style and pastes the results in a row,
// each scaled to cellWidth and separated by gap pixels.
func sheet(c *frame.Compositor, src *loader.Source, cellWidth, gap int) (*image.NRGBA, error) {
	var cells []image.Image
	height := 0
	for _, s := range style.All() {
		out, err := c.Compose(src, s.Key)
		if err != nil {
			return nil, err
		}
		cell := drawing.Thumbnail(out.Image, cellWidth, cellWidth*8)
		height = max(height, cell.Bounds().Dy())
		cells = append(cells, cell)
	}

	width := gap
	for _, cell := range cells {
		width += cell.Bounds().Dx() + gap
	}
	dst := imaging.New(width, height+2*gap, sheetBackground)
	x := gap
	for _, cell := range cells {
		dst = imaging.Paste(dst, cell, image.Pt(x, gap))
		x += cell.Bounds().Dx() + gap
	}
	return dst, nil
}

func main() {
	log.SetPrefix("framesheet: ")
	var in, out, configPath string
	var cellWidth, gap int
	pflag.StringVarP(&in, "in", "i", "", "photo to frame")
	pflag.StringVarP(&out, "out", "o", "framesheet.png", "contact sheet to write")
	pflag.StringVarP(&configPath, "config", "c", "", "JSON config file")
	pflag.IntVar(&cellWidth, "cell-width", 540, "width of each framed photo on the sheet")
	pflag.IntVar(&gap, "gap", 24, "space between framed photos")
	pflag.Parse()
	if in == "" {
		log.Fatal(errors.New("no photo given, use --in"))
	}

	cfg, err := config.Load(config.ResolvePath(configPath), nil)
	if err != nil {
		log.Fatal(err)
	}
	c, err := frame.NewCompositor(cfg.Layout())
	if err != nil {
		log.Fatal(err)
	}
	src, err := loader.Open(in)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Release()

	img, err := sheet(c, src, cellWidth, gap)
	if err != nil {
		log.Fatal(err)
	}
	format, err := export.ParseFormat(filepath.Ext(out))
	if err != nil {
		log.Fatal(err)
	}
	data, err := export.Encode(img, format, cfg.Export.Quality)
	if err != nil {
		log.Fatal(err)
	}
	dst := export.DirDownloader{Dir: filepath.Dir(out)}
	if err := dst.Download(context.Background(), export.File{Name: filepath.Base(out), MIME: format.MIME(), Data: data}); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d styles)", out, len(style.All()))
}
