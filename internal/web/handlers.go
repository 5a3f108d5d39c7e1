package web

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/export"
	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

type Page struct {
	Title   string
	Step    string
	Points  int
	Error   string
	Gallery bool
	Version int64
	Styles  []styleButton
}

type styleButton struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Caption  string `json:"caption"`
	Selected bool   `json:"selected,omitempty"`
}

func buttons(selected string) []styleButton {
	all := style.All()
	out := make([]styleButton, 0, len(all))
	for _, s := range all {
		out = append(out, styleButton{
			Key:      s.Key,
			Name:     s.Name,
			Start:    drawing.Hex(s.Start),
			End:      drawing.Hex(s.End),
			Caption:  s.Caption,
			Selected: s.Key == selected,
		})
	}
	return out
}

func (srv *Server) index(w http.ResponseWriter, r *http.Request) {
	s := srv.store.Session(w, r)
	snap := s.Snapshot()
	page := &Page{
		Title:   title,
		Step:    snap.Step.String(),
		Points:  s.Points,
		Error:   r.URL.Query().Get("error"),
		Gallery: srv.gallery != nil,
		Version: time.Now().UnixNano(),
		Styles:  buttons(snap.StyleKey),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := srv.tmpl.Execute(w, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (srv *Server) styles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(buttons("")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// done sends the browser back to the page after a form post.
func done(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (srv *Server) upload(w http.ResponseWriter, r *http.Request) {
	s := srv.store.Session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, srv.cfg.Web.MaxUploadMiB<<20)

	file, _, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	src, err := loader.Decode(file)
	if err != nil {
		httpError(w, err)
		return
	}
	srv.selectPhoto(w, r, s, src)
}

func (srv *Server) fromGallery(w http.ResponseWriter, r *http.Request) {
	s := srv.store.Session(w, r)
	if srv.gallery == nil {
		http.Error(w, "no gallery configured", http.StatusNotFound)
		return
	}
	uid := r.FormValue("uid")
	if uid == "" {
		http.Error(w, "missing uid", http.StatusBadRequest)
		return
	}
	src, err := srv.gallery.Fetch(r.Context(), uid)
	if err != nil {
		httpError(w, err)
		return
	}
	srv.selectPhoto(w, r, s, src)
}

func (srv *Server) selectPhoto(w http.ResponseWriter, r *http.Request, s *flow.Session, src *loader.Source) {
	if err := s.SelectPhoto(src); err != nil {
		src.Release()
		httpError(w, err)
		return
	}
	done(w, r)
}

func (srv *Server) chooseStyle(w http.ResponseWriter, r *http.Request) {
	s := srv.store.Session(w, r)
	if err := s.ChooseStyle(r.FormValue("style")); err != nil {
		httpError(w, err)
		return
	}
	done(w, r)
}

// step adapts a session transition without arguments to a handler.
func (srv *Server) step(op func(*flow.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(srv.store.Session(w, r)); err != nil {
			httpError(w, err)
			return
		}
		done(w, r)
	}
}

func (srv *Server) current(w http.ResponseWriter, r *http.Request) (*frame.Composited, bool) {
	c := srv.store.Session(w, r).Current()
	if c == nil {
		httpError(w, frame.ErrNoSource)
		return nil, false
	}
	return c, true
}

func (srv *Server) preview(w http.ResponseWriter, r *http.Request) {
	c, ok := srv.current(w, r)
	if !ok {
		return
	}
	width := srv.cfg.Web.PreviewWidth
	thumb := drawing.Thumbnail(c.Image, width, width*4)
	data, err := export.Encode(thumb, export.PNG, 0)
	if err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.PNG.MIME())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// exportable answers 409 unless the session has reached the share step.
func (srv *Server) exportable(w http.ResponseWriter, r *http.Request) (*frame.Composited, bool) {
	c, err := srv.store.Session(w, r).Exportable()
	if err != nil {
		httpError(w, err)
		return nil, false
	}
	return c, true
}

func (srv *Server) download(w http.ResponseWriter, r *http.Request) {
	c, ok := srv.exportable(w, r)
	if !ok {
		return
	}
	if _, err := srv.adapter.Download(r.Context(), c, attachment{w}); err != nil {
		httpError(w, err)
	}
}

func (srv *Server) share(w http.ResponseWriter, r *http.Request) {
	c, ok := srv.exportable(w, r)
	if !ok {
		return
	}
	if _, err := srv.adapter.Share(r.Context(), c, attachment{w}); err != nil {
		httpError(w, err)
	}
}

// attachment is a Downloader that answers the request with the file for
// the browser to save.
type attachment struct {
	w http.ResponseWriter
}

func (a attachment) Download(ctx context.Context, f export.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h := a.w.Header()
	h.Set("Content-Type", f.MIME)
	h.Set("Content-Length", fmt.Sprint(len(f.Data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	if _, err := a.w.Write(f.Data); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}
