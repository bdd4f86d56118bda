package iiif

import (
	"context"
	"fmt"
	"strconv"
)

// Object level facts the host displays without fetching image bytes.
const (
	MimeType  = "image/jpeg"
	MediaType = "BITMAP"
	// ByteSize is unknown, binaries are never fetched.
	ByteSize = 0
)

// CodeUnresolved marks a thumbnail request for an object without service.
const CodeUnresolved = "iiif-unresolved"

// Params is a thumbnail request. Zero width and height ask for the full
// image; a single zero side is derived from the aspect ratio.
type Params struct {
	Width  int
	Height int
	Page   int
}

// Thumbnail is a negotiated image request.
type Thumbnail struct {
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Page   int    `json:"page" yaml:"page"`
}

// TransformError is returned when no thumbnail can be produced. It carries
// zero dimensions so that hosts render an explicit error in place of the
// image.
type TransformError struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s: cannot render %q", e.Code, e.Title)
}

// Transform negotiates a thumbnail of one page against its image service.
func (r *Resolver) Transform(ctx context.Context, p Params) (*Thumbnail, error) {
	page := NormalizePage(p.Page)
	svc := r.ServiceID(ctx, page)
	if svc == "" {
		return nil, &TransformError{Code: CodeUnresolved, Title: r.title}
	}

	width, height := max(p.Width, 0), max(p.Height, 0)
	origWidth, origHeight := r.originalDimensions(ctx, page, svc)

	t := &Thumbnail{Page: page}
	if width == 0 && height == 0 {
		t.URL = FullURL(svc)
		t.Width, t.Height = origWidth, origHeight
		return t, nil
	}

	size := Negotiate(width, height, r.Capability(ctx, svc))
	t.URL = BuildURL(svc, size)
	t.Width, t.Height = size.Width, size.Height
	if t.Height == 0 {
		t.Height = Proportional(size.Width, origWidth, origHeight)
	}
	if t.Width == 0 {
		t.Width = Proportional(size.Height, origHeight, origWidth)
	}
	return t, nil
}

// originalDimensions prefers the canvas size and fills missing sides from
// the image service.
func (r *Resolver) originalDimensions(ctx context.Context, page int, svc string) (int, int) {
	width, height := r.CanvasDimensions(ctx, page)
	if width == 0 || height == 0 {
		c := r.Capability(ctx, svc)
		if width == 0 {
			width = c.Width
		}
		if height == 0 {
			height = c.Height
		}
	}
	return width, height
}

// ThumbnailAttributes returns the extra <img> attributes that let media
// viewers find the file behind a thumbnail: its title with a spoofed image
// extension when it has none, and its size.
func ThumbnailAttributes(namespace, dbKey string, t *Thumbnail) map[string]string {
	if namespace == "" {
		namespace = "File"
	}
	if !imageExtension.MatchString(dbKey) {
		dbKey += ".jpg"
	}
	return map[string]string{
		"data-iiif-title":  fmt.Sprintf("%s:%s", namespace, dbKey),
		"data-file-width":  strconv.Itoa(t.Width),
		"data-file-height": strconv.Itoa(t.Height),
	}
}
