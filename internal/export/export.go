// Package export hands a finished frame to the outside world, either as
// a saved file or through a share capability.
//
// Sharing never fails from the caller's point of view: when no share
// capability exists, or it errors, the same image is downloaded instead.
package export

import (
	"context"
	"errors"
	"log"

	"github.com/drummonds/gpframes/internal/frame"
)

type Method string

const (
	MethodDownload Method = "download"
	MethodShare    Method = "share"
)

// Options are the fixed strings and encoding settings of an Adapter.
type Options struct {
	Format        Format
	Quality       int
	Prefix        string // download file name prefix
	ShareTitle    string
	ShareText     string
	ShareFilename string // base name of the shared file, no extension
}

func DefaultOptions() Options {
	return Options{
		Format:        PNG,
		Quality:       90,
		Prefix:        "gp-2025",
		ShareTitle:    "GP Marketing Convention 2025",
		ShareText:     "Check out my moment from the event!",
		ShareFilename: "shared-image",
	}
}

// Outcome records which path an export took.
type Outcome struct {
	Method   Method
	Filename string
	Size     int
	ShareErr error // why sharing fell back to download, if it did
}

type Adapter struct {
	opts   Options
	sharer Sharer
}

// NewAdapter returns an Adapter sharing through sharer. A nil sharer means
// the platform cannot share.
func NewAdapter(opts Options, sharer Sharer) *Adapter {
	if sharer == nil {
		sharer = NoShare{}
	}
	return &Adapter{opts: opts, sharer: sharer}
}

func (a *Adapter) Options() Options { return a.opts }

// Download encodes c and saves it through dst under the style file name.
func (a *Adapter) Download(ctx context.Context, c *frame.Composited, dst Downloader) (Outcome, error) {
	data, err := a.encode(c)
	if err != nil {
		return Outcome{}, err
	}
	return a.save(ctx, c, data, dst)
}

// Share offers c to the share capability and falls back to saving the
// same encoded bytes through dst when sharing is unsupported or fails.
func (a *Adapter) Share(ctx context.Context, c *frame.Composited, dst Downloader) (Outcome, error) {
	data, err := a.encode(c)
	if err != nil {
		return Outcome{}, err
	}
	f := File{Name: a.opts.ShareFilename + "." + a.opts.Format.Ext(), MIME: a.opts.Format.MIME(), Data: data}
	payload := Payload{Title: a.opts.ShareTitle, Text: a.opts.ShareText, Files: []File{f}}

	shareErr := a.sharer.Share(ctx, payload)
	if shareErr == nil {
		log.Printf("export: shared %s (%d bytes)", f.Name, len(f.Data))
		return Outcome{Method: MethodShare, Filename: f.Name, Size: len(f.Data)}, nil
	}
	if errors.Is(shareErr, ErrShareUnsupported) {
		log.Printf("export: share unsupported, saving instead")
	} else {
		log.Printf("export: share failed, saving instead: %v", shareErr)
	}

	out, err := a.save(ctx, c, data, dst)
	if err != nil {
		return out, err
	}
	out.ShareErr = shareErr
	return out, nil
}

func (a *Adapter) encode(c *frame.Composited) ([]byte, error) {
	if c == nil || c.Image == nil {
		return nil, frame.ErrNoSource
	}
	return Encode(c.Image, a.opts.Format, a.opts.Quality)
}

// save hands already encoded data to dst under the style file name.
func (a *Adapter) save(ctx context.Context, c *frame.Composited, data []byte, dst Downloader) (Outcome, error) {
	f := File{Name: Filename(a.opts.Prefix, c.Key, a.opts.Format), MIME: a.opts.Format.MIME(), Data: data}
	if err := dst.Download(ctx, f); err != nil {
		log.Printf("export: download %s failed: %v", f.Name, err)
		return Outcome{}, err
	}
	log.Printf("export: downloaded %s (%d bytes)", f.Name, len(f.Data))
	return Outcome{Method: MethodDownload, Filename: f.Name, Size: len(f.Data)}, nil
}
