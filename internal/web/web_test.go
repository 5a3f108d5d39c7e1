package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/gpframes/internal/config"
	"github.com/drummonds/gpframes/internal/flow"
	"github.com/drummonds/gpframes/internal/frame"
	"github.com/drummonds/gpframes/internal/loader"
	"github.com/drummonds/gpframes/internal/style"
)

type fakeGallery struct {
	fetched []string
}

func (g *fakeGallery) Fetch(_ context.Context, uid string) (*loader.Source, error) {
	g.fetched = append(g.fetched, uid)
	if uid == "missing" {
		return nil, loader.ErrNoPhoto
	}
	return loader.NewSource(image.NewRGBA(image.Rect(0, 0, 300, 200)), "jpeg")
}

// client replays the session cookie the way a browser would.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, gallery Gallery) *client {
	t.Helper()
	cfg := config.Default()
	c, err := frame.NewCompositor(cfg.Layout())
	require.NoError(t, err)
	srv, err := NewServer(cfg, c, gallery)
	require.NoError(t, err)
	return &client{t: t, h: srv.Router()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) upload(data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", "photo.png")
	require.NoError(c.t, err)
	_, err = fw.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{200, 120, 40, 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFlowInBrowser(t *testing.T) {
	c := newClient(t, nil)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="photo"`)
	require.NotNil(t, c.cookie)

	rec = c.upload(pngBytes(t, 640, 480))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = c.get("/")
	assert.Contains(t, rec.Body.String(), "Change Photo")
	assert.Contains(t, rec.Body.String(), "Best Moments")

	rec = c.get("/preview.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	preview, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 540, preview.Bounds().Dx())
	assert.Equal(t, 405, preview.Bounds().Dy())

	rec = c.post("/style", url.Values{"style": {style.BestMoments}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.post("/next", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/share")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=gp-2025-best-moments.png", rec.Header().Get("Content-Disposition"))
	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1080, out.Bounds().Dx())
	assert.Equal(t, 810, out.Bounds().Dy())

	rec = c.post("/next", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.post("/edit", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.post("/change", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusConflict, c.get("/download").Code)
}

func TestExportOnlyFromShareStep(t *testing.T) {
	c := newClient(t, nil)
	assert.Equal(t, http.StatusConflict, c.get("/download").Code)

	require.Equal(t, http.StatusSeeOther, c.upload(pngBytes(t, 64, 48)).Code)
	assert.Equal(t, http.StatusOK, c.get("/preview.png").Code)
	rec := c.get("/download")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, http.StatusConflict, c.get("/share").Code)

	require.Equal(t, http.StatusSeeOther, c.post("/next", nil).Code)
	rec = c.get("/download")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=gp-2025-tour-buddy.png", rec.Header().Get("Content-Disposition"))

	require.Equal(t, http.StatusSeeOther, c.post("/edit", nil).Code)
	assert.Equal(t, http.StatusConflict, c.get("/share").Code)
}

func TestUploadGarbageKeepsStep(t *testing.T) {
	c := newClient(t, nil)
	rec := c.upload([]byte("definitely not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusConflict, c.post("/next", nil).Code)
	assert.Contains(t, c.get("/").Body.String(), `name="photo"`)
}

func TestUploadWithoutFile(t *testing.T) {
	c := newClient(t, nil)
	assert.Equal(t, http.StatusBadRequest, c.post("/upload", url.Values{}).Code)
}

func TestPreviewBeforeUpload(t *testing.T) {
	c := newClient(t, nil)
	assert.Equal(t, http.StatusNotFound, c.get("/preview.png").Code)
}

func TestSessionsAreSeparate(t *testing.T) {
	a := newClient(t, nil)
	require.Equal(t, http.StatusSeeOther, a.upload(pngBytes(t, 50, 50)).Code)

	b := &client{t: t, h: a.h}
	assert.Equal(t, http.StatusNotFound, b.get("/preview.png").Code)
	assert.Equal(t, http.StatusOK, a.get("/preview.png").Code)
}

func TestStylesJSON(t *testing.T) {
	c := newClient(t, nil)
	rec := c.get("/styles")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []styleButton
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, style.TourBuddy, got[0].Key)
	assert.Equal(t, "#3B82F6", got[0].Start)
	assert.Equal(t, "#06B6D4", got[0].End)
	assert.Equal(t, "My Best Tour Buddy", got[0].Caption)
}

func TestGallery(t *testing.T) {
	c := newClient(t, nil)
	assert.Equal(t, http.StatusNotFound, c.post("/gallery", url.Values{"uid": {"p1"}}).Code)

	g := &fakeGallery{}
	c = newClient(t, g)
	assert.Contains(t, c.get("/").Body.String(), `action="/gallery"`)
	assert.Equal(t, http.StatusBadRequest, c.post("/gallery", url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, c.post("/gallery", url.Values{"uid": {"missing"}}).Code)
	assert.Equal(t, http.StatusSeeOther, c.post("/gallery", url.Values{"uid": {"p1"}}).Code)
	assert.Equal(t, []string{"missing", "p1"}, g.fetched)
	assert.Equal(t, http.StatusOK, c.get("/preview.png").Code)
}

func TestHeartbeat(t *testing.T) {
	c := newClient(t, nil)
	assert.Equal(t, http.StatusOK, c.get("/ping").Code)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, status(flow.ErrInvalidTransition))
	assert.Equal(t, http.StatusTooManyRequests, status(flow.ErrBusy))
	assert.Equal(t, http.StatusBadRequest, status(loader.ErrDecode))
	assert.Equal(t, http.StatusNotFound, status(frame.ErrNoSource))
	assert.Equal(t, http.StatusInternalServerError, status(assert.AnError))
}

func TestStoreExpire(t *testing.T) {
	c, err := frame.NewCompositor(frame.DefaultLayout())
	require.NoError(t, err)
	st := NewStore(c, time.Minute)

	s := st.Session(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	src, err := loader.NewSource(image.NewRGBA(image.Rect(0, 0, 10, 10)), "png")
	require.NoError(t, err)
	require.NoError(t, s.SelectPhoto(src))
	assert.Equal(t, 1, st.Len())

	assert.Equal(t, 0, st.Expire(time.Now()))
	assert.Equal(t, 1, st.Expire(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, st.Len())
	assert.True(t, src.Released())
}

func TestStoreExpireDoesNotBlockRequests(t *testing.T) {
	c, err := frame.NewCompositor(frame.DefaultLayout())
	require.NoError(t, err)
	st := NewStore(c, time.Minute)
	st.Session(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	closing := make(chan struct{})
	release := make(chan struct{})
	orig := closeSession
	closeSession = func(s *flow.Session) {
		close(closing)
		<-release
		orig(s)
	}
	t.Cleanup(func() { closeSession = orig })

	expired := make(chan int, 1)
	go func() { expired <- st.Expire(time.Now().Add(2 * time.Minute)) }()
	<-closing

	// a slow close leaves the store free for other requests
	assert.Equal(t, 0, st.Len())
	s := st.Session(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, s)
	assert.Equal(t, 1, st.Len())

	close(release)
	assert.Equal(t, 1, <-expired)
}
