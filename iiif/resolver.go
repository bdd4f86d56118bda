package iiif

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Resolver finds the manifest behind one title and answers questions about
// its pages. The manifest and every image information document are fetched
// at most once per resolver; failures are remembered too.
type Resolver struct {
	title string
	repo  *Repo

	mu           sync.Mutex
	attempted    bool
	object       *Object
	capabilities map[string]Capability
}

// Title returns the title the resolver was created for.
func (r *Resolver) Title() string {
	return r.title
}

// ObjectID returns the object id derived from the title.
func (r *Resolver) ObjectID() string {
	return ObjectID(r.title)
}

// Resolve returns the resolved object, or nil when no provider could serve
// it. Providers are tried in order and the first one whose manifest can be
// fetched and parsed wins.
func (r *Resolver) Resolve(ctx context.Context) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.attempted {
		r.attempted = true
		r.object = r.resolve(ctx)
	}
	return r.object
}

func (r *Resolver) resolve(ctx context.Context) *Object {
	logger := r.logger(ctx).With("title", r.title)

	id := ObjectID(r.title)
	if id == "" {
		logger.Debug("empty object id")
		return nil
	}

	for _, p := range r.repo.providers {
		manifestURL := p.ManifestURL(id)
		if manifestURL == "" {
			continue
		}

		body, err := r.repo.fetcher.Fetch(ctx, manifestURL)
		if err != nil || len(bytes.TrimSpace(body)) == 0 {
			logger.Debug("manifest unavailable", "provider", p.ID, "url", manifestURL, "err", err)
			continue
		}

		manifest, raw, err := decodeManifest(body)
		if err != nil {
			logger.Debug("manifest unreadable", "provider", p.ID, "url", manifestURL, "err", err)
			continue
		}

		provider := p.ID
		if provider == "" {
			provider = "default"
		}

		logger.Debug("resolved", "provider", provider, "url", manifestURL, "version", manifest.Version())
		return &Object{
			Provider:    provider,
			ObjectID:    id,
			ManifestURL: manifestURL,
			Raw:         raw,
			Manifest:    manifest,
		}
	}

	logger.Debug("unresolved", "id", id)
	return nil
}

// Exists reports whether the title resolves.
func (r *Resolver) Exists(ctx context.Context) bool {
	return r.Resolve(ctx) != nil
}

// PageCount is the number of canvases.
func (r *Resolver) PageCount(ctx context.Context) int {
	obj := r.Resolve(ctx)
	if obj == nil {
		return 0
	}
	return len(obj.Manifest.Canvases())
}

// Canvas returns the canvas for a 1-based page.
func (r *Resolver) Canvas(ctx context.Context, page int) (Canvas, bool) {
	obj := r.Resolve(ctx)
	if obj == nil {
		return Canvas{}, false
	}
	return CanvasForPage(obj.Manifest, page)
}

// ServiceID returns the image service of a page, or "".
func (r *Resolver) ServiceID(ctx context.Context, page int) string {
	canvas, _ := r.Canvas(ctx, page)
	return canvas.ServiceID
}

// CanvasDimensions returns the size a page's canvas declares.
func (r *Resolver) CanvasDimensions(ctx context.Context, page int) (int, int) {
	canvas, _ := r.Canvas(ctx, page)
	return canvas.Width, canvas.Height
}

// Dimensions returns the size of a page: the canvas size when it declares
// both sides, else the size published by its image service.
func (r *Resolver) Dimensions(ctx context.Context, page int) (int, int) {
	canvas, ok := r.Canvas(ctx, page)
	if !ok {
		return 0, 0
	}
	if canvas.Width > 0 && canvas.Height > 0 {
		return canvas.Width, canvas.Height
	}
	if canvas.ServiceID == "" {
		return 0, 0
	}
	c := r.Capability(ctx, canvas.ServiceID)
	return c.Width, c.Height
}

// FullURL is the full size image of the first page, or "".
func (r *Resolver) FullURL(ctx context.Context) string {
	if svc := r.ServiceID(ctx, 1); svc != "" {
		return FullURL(svc)
	}
	return ""
}

// DescriptionURL is the landing page of the object, or "".
func (r *Resolver) DescriptionURL(ctx context.Context) string {
	obj := r.Resolve(ctx)
	if obj == nil {
		return ""
	}
	return LandingPage(obj.Manifest, r.repo.labels[obj.Provider])
}

// Capability returns the limits of an image service. It never fails: an
// unreachable or unreadable info.json yields a Capability without limits.
func (r *Resolver) Capability(ctx context.Context, serviceID string) Capability {
	serviceID = strings.TrimRight(serviceID, "/")

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.capabilities[serviceID]; ok {
		return c
	}

	c := r.fetchCapability(ctx, serviceID)
	r.capabilities[serviceID] = c
	return c
}

func (r *Resolver) fetchCapability(ctx context.Context, serviceID string) Capability {
	infoURL := InfoURL(serviceID)
	body, err := r.repo.fetcher.Fetch(ctx, infoURL)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		r.logger(ctx).Debug("image information unavailable", "url", infoURL, "err", err)
		return Capability{ServiceID: serviceID}
	}

	c, err := ParseCapability(body)
	if err != nil {
		r.logger(ctx).Debug("image information unreadable", "url", infoURL, "err", err)
		return Capability{ServiceID: serviceID}
	}
	c.ServiceID = serviceID
	return c
}

// logger prefers the request logger carried by ctx.
func (r *Resolver) logger(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return logger.WithPrefix("iiif")
	}
	return r.repo.logger
}
