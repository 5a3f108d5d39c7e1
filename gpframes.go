// Program gpframes puts a branded event frame around a photo and saves or
// shares the result.
//
//	gpframes -i photo.jpg -s best-moments -o out/
//	gpframes --photoprism-uid pqxxxx --share
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/export"
	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

const version = "gpframes V0.3.0 2026-10-17"

type options struct {
	configPath string
	in         string
	uid        string
	album      bool
	styleKey   string
	out        string
	format     string
	quality    int
	share      bool
	listStyles bool
	version    bool
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	o := &options{}
	fs := pflag.NewFlagSet("gpframes", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "JSON config file")
	fs.StringVarP(&o.in, "in", "i", "", "photo to frame")
	fs.StringVar(&o.uid, "photoprism-uid", "", "PhotoPrism photo UID to frame instead of a file")
	fs.BoolVar(&o.album, "album", false, "frame the first photo of the configured PhotoPrism album")
	fs.StringVarP(&o.styleKey, "style", "s", style.Default, "frame style key")
	fs.StringVarP(&o.out, "out", "o", "", "output directory (default from config)")
	fs.StringVarP(&o.format, "format", "f", "", "output format: png, jpg or webp")
	fs.IntVarP(&o.quality, "quality", "q", -1, "JPEG/WebP quality, 0 for lossless WebP")
	fs.BoolVar(&o.share, "share", false, "share through the configured command, saving if that fails")
	fs.BoolVar(&o.listStyles, "list-styles", false, "print the frame styles and exit")
	fs.BoolVarP(&o.version, "version", "v", false, "print the version and exit")
	err := fs.Parse(args)
	return o, fs, err
}

// apply lets flags that were set override the loaded configuration.
func (o *options) apply(cfg *config.Config, fs *pflag.FlagSet) error {
	if fs.Changed("out") {
		cfg.Export.Dir = o.out
	}
	if fs.Changed("format") {
		cfg.Export.Format = o.format
	}
	if fs.Changed("quality") {
		cfg.Export.Quality = o.quality
	}
	return cfg.Validate()
}

func listStyles() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tGRADIENT\tCAPTION")
	for _, s := range style.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%s\n", s.Key, s.Name, drawing.Hex(s.Start), drawing.Hex(s.End), s.Caption)
	}
	tw.Flush()
}

func source(ctx context.Context, o *options, cfg *config.Config) (*loader.Source, error) {
	if o.in != "" {
		return loader.Open(o.in)
	}
	if o.uid == "" && !o.album {
		return nil, errors.New("no photo given, use --in, --photoprism-uid or --album")
	}
	pp, err := loader.NewPhotoPrism(cfg.PhotoPrism.Domain, cfg.PhotoPrism.Token)
	if err != nil {
		return nil, err
	}
	uid := o.uid
	if uid == "" {
		uids, err := pp.Album(ctx, cfg.PhotoPrism.AlbumUID)
		if err != nil {
			return nil, err
		}
		if len(uids) == 0 {
			return nil, loader.ErrNoPhoto
		}
		uid = uids[0]
	}
	return pp.Fetch(ctx, uid)
}

func gpframes(ctx context.Context, o *options, cfg *config.Config) error {
	c, err := frame.NewCompositor(cfg.Layout())
	if err != nil {
		return err
	}
	src, err := source(ctx, o, cfg)
	if err != nil {
		return err
	}
	log.Printf("loaded %s photo %dx%d", src.Format(), src.Width(), src.Height())

	session := flow.NewSession(c)
	defer session.Close()
	if err := session.SelectPhoto(src); err != nil {
		src.Release()
		return err
	}
	if err := session.ChooseStyle(o.styleKey); err != nil {
		return err
	}
	if err := session.Next(); err != nil {
		return err
	}
	composite, err := session.Exportable()
	if err != nil {
		return err
	}
	if !composite.Found {
		log.Printf("unknown style %q, framed with %s", o.styleKey, composite.Style.Key)
	}

	adapter := export.NewAdapter(cfg.ExportOptions(), cfg.Sharer())
	dst := export.DirDownloader{Dir: cfg.Export.Dir}
	var out export.Outcome
	if o.share {
		out, err = adapter.Share(ctx, composite, dst)
	} else {
		out, err = adapter.Download(ctx, composite, dst)
	}
	if err != nil {
		return err
	}
	if out.Method == export.MethodDownload {
		fmt.Println(dst.Path(out.Filename))
	} else {
		fmt.Printf("shared %s\n", out.Filename)
	}
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("gpframes: ")

	o, fs, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	if o.version {
		fmt.Println(version)
		return
	}
	if o.listStyles {
		listStyles()
		return
	}

	cfg, err := config.Load(config.ResolvePath(o.configPath), nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := o.apply(cfg, fs); err != nil {
		log.Fatal(err)
	}

	// Cancel the context instead of exiting the program:
	ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt)
	defer canc()
	if err := gpframes(ctx, o, cfg); err != nil {
		log.Fatal(err)
	}
}
