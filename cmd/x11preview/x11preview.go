// x11preview shows a framed photo in an X11 window. Each key press
// re-renders it with the next frame style.
package main

import (
	"errors"
	"image"
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/spf13/pflag"
	"golang.org/x/image/draw"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

const (
	maxWindowWidth  = 960
	maxWindowHeight = 960
	// PutImage requests must stay under the core protocol's 256KiB limit.
	maxRequestBytes = 192 * 1024
)

func NewX(width, height int, title string) (*xgb.Conn, xproto.Window, xproto.Atom, xproto.Atom, error) {
	X, err := xgb.NewConn()
	if err != nil {
		return nil, 0, 0, 0, err
	}

	screen := xproto.Setup(X).DefaultScreen(X)
	wid, _ := xproto.NewWindowId(X)
	xproto.CreateWindow(X, screen.RootDepth, wid, screen.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{
			0xffffffff,
			xproto.EventMaskExposure | xproto.EventMaskKeyPress | xproto.EventMaskStructureNotify,
		})
	xproto.ChangeProperty(X, xproto.PropModeReplace, wid, xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title))

	// Set WM_PROTOCOLS to handle window close
	atomWmDeleteWindow, _ := xproto.InternAtom(X, false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	atomWmProtocols, _ := xproto.InternAtom(X, false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	xproto.ChangeProperty(X, xproto.PropModeReplace, wid, atomWmProtocols.Atom, xproto.AtomAtom, 32, 1, []byte{byte(atomWmDeleteWindow.Atom), 0, 0, 0})

	xproto.MapWindow(X, wid)
	return X, wid, atomWmDeleteWindow.Atom, atomWmProtocols.Atom, nil
}

// window holds the scaled copy of the current composite.
type window struct {
	X     *xgb.Conn
	wid   xproto.Window
	gc    xproto.Gcontext
	depth byte
	buf   *image.RGBA
	strip []byte
}

func newWindow(X *xgb.Conn, wid xproto.Window, size image.Rectangle) (*window, error) {
	gc, err := xproto.NewGcontextId(X)
	if err != nil {
		return nil, err
	}
	xproto.CreateGC(X, gc, xproto.Drawable(wid), 0, nil)
	w := &window{
		X:     X,
		wid:   wid,
		gc:    gc,
		depth: xproto.Setup(X).DefaultScreen(X).RootDepth,
		buf:   image.NewRGBA(size),
	}
	w.strip = make([]byte, size.Dx()*stripRows(size.Dx())*4)
	return w, nil
}

func (w *window) show(c *frame.Composited) {
	draw.CatmullRom.Scale(w.buf, w.buf.Bounds(), c.Image, c.Image.Bounds(), draw.Src, nil)
}

// paint copies the buffer to the window a strip of rows at a time.
func (w *window) paint() {
	width, height := w.buf.Bounds().Dx(), w.buf.Bounds().Dy()
	rows := stripRows(width)
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		data := w.strip[:width*n*4]
		toBGRX(w.buf, y, n, data)
		xproto.PutImage(w.X, xproto.ImageFormatZPixmap, xproto.Drawable(w.wid), w.gc,
			uint16(width), uint16(n), 0, int16(y), 0, w.depth, data)
	}
}

func stripRows(width int) int {
	return max(1, maxRequestBytes/(width*4))
}

// toBGRX writes n rows of img starting at row y0 in the 32 bit little
// endian layout of a 24 bit TrueColor visual.
func toBGRX(img *image.RGBA, y0, n int, dst []byte) {
	width := img.Bounds().Dx()
	i := 0
	for y := y0; y < y0+n; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			dst[i] = row[x+2]
			dst[i+1] = row[x+1]
			dst[i+2] = row[x]
			dst[i+3] = 0
			i += 4
		}
	}
}

// windowSize fits bounds inside the largest window we open. X rejects a
// window with a zero side, so a sliver of a photo still gets one pixel.
func windowSize(bounds image.Rectangle) image.Rectangle {
	size := drawing.ScaleImageInside(bounds, maxWindowWidth, maxWindowHeight)
	return image.Rect(0, 0, max(size.Dx(), 1), max(size.Dy(), 1))
}

func main() {
	log.SetPrefix("x11preview: ")
	var in, key, configPath string
	pflag.StringVarP(&in, "in", "i", "", "photo to preview")
	pflag.StringVarP(&key, "style", "s", style.Default, "first frame style")
	pflag.StringVarP(&configPath, "config", "c", "", "JSON config file")
	pflag.Parse()
	if in == "" && pflag.NArg() > 0 {
		in = pflag.Arg(0)
	}
	if in == "" {
		log.Fatal(errors.New("no photo given"))
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
	session := flow.NewSession(c)
	defer session.Close()
	if err := session.SelectPhoto(src); err != nil {
		log.Fatal(err)
	}
	if err := session.ChooseStyle(key); err != nil {
		log.Fatal(err)
	}

	size := windowSize(session.Current().Image.Bounds())
	X, wid, atomWmDeleteWindow, atomWmProtocols, err := NewX(size.Dx(), size.Dy(), "gpframes preview")
	if err != nil {
		log.Fatal(err)
	}
	defer X.Close()
	win, err := newWindow(X, wid, image.Rect(0, 0, size.Dx(), size.Dy()))
	if err != nil {
		log.Fatal(err)
	}
	win.show(session.Current())

	for {
		ev, err := X.WaitForEvent()
		if err != nil {
			log.Println(err)
			continue
		}
		if ev == nil {
			return
		}

		switch e := ev.(type) {
		case xproto.ExposeEvent:
			if e.Count == 0 {
				win.paint()
			}
		case xproto.ClientMessageEvent:
			if e.Type == atomWmProtocols && e.Data.Data32[0] == uint32(atomWmDeleteWindow) {
				return
			}
		case xproto.KeyPressEvent:
			next := style.Next(session.Snapshot().StyleKey)
			if err := session.ChooseStyle(next); err != nil {
				log.Println(err)
				continue
			}
			log.Printf("frame %s", next)
			win.show(session.Current())
			win.paint()
		}
	}
}
