// gpframes-web serves the social frames flow to browsers.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/web"
)

func main() {
	log.SetPrefix("gpframes-web: ")
	var configPath, bind string
	pflag.StringVarP(&configPath, "config", "c", "", "JSON config file")
	pflag.StringVarP(&bind, "bind", "b", "", "listen address (default from config)")
	pflag.Parse()

	cfg, err := config.Load(config.ResolvePath(configPath), nil)
	if err != nil {
		log.Fatal(err)
	}
	if pflag.CommandLine.Changed("bind") {
		cfg.Web.Bind = bind
	}

	c, err := frame.NewCompositor(cfg.Layout())
	if err != nil {
		log.Fatal(err)
	}

	var gallery web.Gallery
	if cfg.PhotoPrism.Domain != "" {
		pp, err := loader.NewPhotoPrism(cfg.PhotoPrism.Domain, cfg.PhotoPrism.Token)
		if err != nil {
			log.Fatal(err)
		}
		gallery = pp
		log.Printf("gallery photos from %s", cfg.PhotoPrism.Domain)
	}

	srv, err := web.NewServer(cfg, c, gallery)
	if err != nil {
		log.Fatal(err)
	}

	ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer canc()
	err = srv.ListenAndServe(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
