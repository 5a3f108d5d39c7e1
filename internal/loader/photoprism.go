package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"

	"github.com/disintegration/gift"
	"github.com/drummonds/photoprism-go-api/api"
)

var ErrNoPhoto = errors.New("photoprism: no usable photo")

const albumPageSize = 20

// PhotoPrism loads event photos from a PhotoPrism gallery.
type PhotoPrism struct {
	Client *api.ClientWithResponses
}

func NewPhotoPrism(host, token string) (*PhotoPrism, error) {
	if host == "" {
		return nil, errors.New("photoprism: no host configured")
	}
	provider := api.NewXAuthProvider(token)
	nc, err := api.NewClientWithResponses(host, api.WithRequestEditorFn(provider.Intercept))
	if err != nil {
		return nil, fmt.Errorf("photoprism client: %w", err)
	}
	return &PhotoPrism{Client: nc}, nil
}

// Album returns the UIDs of the first photos in the album.
func (p *PhotoPrism) Album(ctx context.Context, albumUID string) ([]string, error) {
	params := api.SearchPhotosParams{Count: albumPageSize, S: &albumUID}
	photos, err := p.Client.SearchPhotosWithResponse(ctx, &params)
	if err != nil {
		return nil, err
	}
	if photos.HTTPResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photoprism: search status %v", photos.HTTPResponse.StatusCode)
	}
	if photos.JSON200 == nil || len(*photos.JSON200) < 1 {
		return nil, ErrNoPhoto
	}
	uids := make([]string, 0, len(*photos.JSON200))
	for _, photo := range *photos.JSON200 {
		if photo.UID != nil {
			uids = append(uids, *photo.UID)
		}
	}
	return uids, nil
}

func firstJpeg(files []api.EntityFile) (api.EntityFile, bool) {
	for _, file := range files {
		if file.Mime != nil && *file.Mime == "image/jpeg" && file.Hash != nil {
			return file, true
		}
	}
	return api.EntityFile{}, false
}

// Fetch downloads the original JPEG of photo uid and decodes it with the
// orientation PhotoPrism has on record.
func (p *PhotoPrism) Fetch(ctx context.Context, uid string) (*Source, error) {
	photo, err := p.Client.GetPhotoWithResponse(ctx, uid)
	if err != nil {
		return nil, err
	}
	if photo.JSON200 == nil || photo.JSON200.Files == nil {
		return nil, fmt.Errorf("%w: %s has no files", ErrNoPhoto, uid)
	}
	file, ok := firstJpeg(*photo.JSON200.Files)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no jpeg", ErrNoPhoto, uid)
	}
	orientation := 1
	if file.Orientation != nil {
		orientation = *file.Orientation
	}

	log.Printf("photoprism: downloading %s", uid)
	dl, err := p.Client.GetDownloadWithResponse(ctx, *file.Hash)
	if err != nil {
		return nil, err
	}
	if dl.HTTPResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photoprism: download status %v", dl.HTTPResponse.StatusCode)
	}

	// Orientation comes from the catalogue, so decode without EXIF handling.
	raw, format, err := image.Decode(bytes.NewReader(dl.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return NewSource(Orient(raw, orientation), format)
}

// Orient applies an EXIF orientation value (1-8) to img.
func Orient(img image.Image, orientation int) image.Image {
	g := gift.New()
	switch orientation {
	case 2:
		g.Add(gift.FlipHorizontal())
	case 3:
		g.Add(gift.Rotate180())
	case 4:
		g.Add(gift.FlipVertical())
	case 5:
		g.Add(gift.Rotate270())
		g.Add(gift.FlipHorizontal())
	case 6:
		g.Add(gift.Rotate270())
	case 7:
		g.Add(gift.Rotate90())
		g.Add(gift.FlipHorizontal())
	case 8:
		g.Add(gift.Rotate90())
	default:
		return img
	}
	oriented := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(oriented, img)
	return oriented
}
