// Package web walks the social frames flow in a browser: upload a photo,
// pick a frame, then download or share the result.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/export"
	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
)

//go:embed template
var content embed.FS

const title = "GP Social Frames"

// Gallery supplies photos by id, as a PhotoPrism server does.
type Gallery interface {
	Fetch(ctx context.Context, uid string) (*loader.Source, error)
}

type Server struct {
	cfg     *config.Config
	store   *Store
	adapter *export.Adapter
	gallery Gallery
	tmpl    *template.Template
}

// NewServer builds the front end. gallery may be nil when no photo
// gallery is configured.
func NewServer(cfg *config.Config, c *frame.Compositor, gallery Gallery) (*Server, error) {
	tmpl, err := template.ParseFS(content, "template/base.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	idle := time.Duration(cfg.Web.IdleMinutes) * time.Minute
	return &Server{
		cfg:   cfg,
		store: NewStore(c, idle),
		// A browser cannot be handed a server side share sheet, so the
		// share route always ends up as an attachment.
		adapter: export.NewAdapter(cfg.ExportOptions(), nil),
		gallery: gallery,
		tmpl:    tmpl,
	}, nil
}

func (srv *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Throttle(32))

	r.Get("/", srv.index)
	r.Get("/styles", srv.styles)
	r.Get("/preview.png", srv.preview)
	r.Get("/download", srv.download)
	r.Get("/share", srv.share)

	r.Post("/upload", srv.upload)
	r.Post("/gallery", srv.fromGallery)
	r.Post("/style", srv.chooseStyle)
	r.Post("/next", srv.step((*flow.Session).Next))
	r.Post("/edit", srv.step((*flow.Session).EditFrame))
	r.Post("/change", srv.step((*flow.Session).ChangePhoto))
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down and
// releases every session.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              srv.cfg.Web.Bind,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer srv.store.Close()

	go srv.expireSessions(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Printf("Starting web server on %s", hs.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdown); err != nil {
		return err
	}
	return ctx.Err()
}

func (srv *Server) expireSessions(ctx context.Context) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if n := srv.store.Expire(now); n > 0 {
				log.Printf("expired %d idle sessions", n)
			}
		}
	}
}

// status maps flow and loader errors onto HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, flow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, flow.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, loader.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrNoPhoto):
		return http.StatusNotFound
	case errors.Is(err, frame.ErrNoSource):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func httpError(w http.ResponseWriter, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		log.Printf("web: %v", err)
	}
	http.Error(w, err.Error(), code)
}
