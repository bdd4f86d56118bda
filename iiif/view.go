package iiif

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

type providerInfo struct {
	ID              string `json:"id"`
	IDPattern       string `json:"idPattern,omitempty"`
	ManifestPattern string `json:"manifestPattern"`
}

// IndexHandler lists the configured providers.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	repo, ok := r.Context().Value(repoKey).(*Repo)
	if !ok {
		writeError(w, HTTPError{http.StatusInternalServerError, "no repository"})
		return
	}

	providers := make([]providerInfo, 0, len(repo.Providers()))
	for _, p := range repo.Providers() {
		info := providerInfo{ID: p.ID, ManifestPattern: p.ManifestPattern}
		if p.IDPattern != nil {
			info.IDPattern = p.IDPattern.String()
		}
		providers = append(providers, info)
	}

	serveJSON(w, r, "index.json", map[string]interface{}{"providers": providers})
}

// RedirectHandler sends bare titles to their description.
func RedirectHandler(w http.ResponseWriter, r *http.Request) {
	title, err := titleOf(r)
	if err != nil {
		debug(r.Context(), "title is frob %#v", mux.Vars(r)["title"])
		http.NotFound(w, r)
		return
	}

	scheme := "https"

	if r.TLS == nil {
		scheme = "http"
	}
	if r.Header.Get("X-Forwarded-Proto") != "" {
		scheme = r.Header.Get("X-Forwarded-Proto")
	}

	host := r.Host
	if r.Header.Get("X-Forwarded-Host") != "" {
		host = r.Header.Get("X-Forwarded-Host")
	}

	http.Redirect(w, r, fmt.Sprintf("%s://%s/%s/info.json", scheme, host, url.PathEscape(title)), http.StatusSeeOther)
}

// InfoHandler responds with the description of the resolved object.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	resolver, err := resolverOf(r)
	if err != nil {
		writeError(w, err)
		return
	}

	info := Describe(r.Context(), resolver)
	if info == nil {
		writeError(w, HTTPError{http.StatusNotFound, fmt.Sprintf("%q cannot be resolved", resolver.Title())})
		return
	}

	serveJSON(w, r, "info.json", info)
}

// ThumbnailHandler responds with the negotiated thumbnail request.
func ThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	thumbnail, err := transform(r)
	if err != nil {
		writeError(w, err)
		return
	}

	serveJSON(w, r, "thumbnail.json", thumbnail)
}

// ThumbnailImageHandler redirects to the image service.
func ThumbnailImageHandler(w http.ResponseWriter, r *http.Request) {
	thumbnail, err := transform(r)
	if err != nil {
		writeError(w, err)
		return
	}

	setHeaders(w, r)
	http.Redirect(w, r, thumbnail.URL, http.StatusSeeOther)
}

// LandingHandler redirects to the landing page of the object.
func LandingHandler(w http.ResponseWriter, r *http.Request) {
	resolver, err := resolverOf(r)
	if err != nil {
		writeError(w, err)
		return
	}

	landing := resolver.DescriptionURL(r.Context())
	if landing == "" {
		writeError(w, HTTPError{http.StatusNotFound, fmt.Sprintf("%q has no landing page", resolver.Title())})
		return
	}

	setHeaders(w, r)
	http.Redirect(w, r, landing, http.StatusSeeOther)
}

func transform(r *http.Request) (*Thumbnail, error) {
	resolver, err := resolverOf(r)
	if err != nil {
		return nil, err
	}

	params, err := paramsOf(r.URL.Query())
	if err != nil {
		return nil, err
	}

	return resolver.Transform(r.Context(), params)
}

func titleOf(r *http.Request) (string, error) {
	title, err := url.PathUnescape(mux.Vars(r)["title"])
	if err != nil {
		return "", HTTPError{http.StatusNotFound, err.Error()}
	}
	return strings.Replace(title, "../", "", -1), nil
}

func resolverOf(r *http.Request) (*Resolver, error) {
	title, err := titleOf(r)
	if err != nil {
		return nil, err
	}

	repo, ok := r.Context().Value(repoKey).(*Repo)
	if !ok {
		return nil, HTTPError{http.StatusInternalServerError, "no repository"}
	}
	return repo.Resolver(title), nil
}

// paramsOf reads width|w, height|h and page from the query.
func paramsOf(query url.Values) (Params, error) {
	var p Params
	var err error

	if p.Width, err = intParam(query, "width", "w"); err != nil {
		return p, err
	}
	if p.Height, err = intParam(query, "height", "h"); err != nil {
		return p, err
	}
	if p.Page, err = intParam(query, "page"); err != nil {
		return p, err
	}
	return p, nil
}

func intParam(query url.Values, names ...string) (int, error) {
	for _, name := range names {
		value := strings.TrimSpace(query.Get(name))
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, HTTPError{http.StatusBadRequest, fmt.Sprintf("%s must be an integer, got %q", name, value)}
		}
		return n, nil
	}
	return 0, nil
}

func setHeaders(w http.ResponseWriter, r *http.Request) {
	var maxAge int64
	if config, ok := r.Context().Value(configKey).(*ServerConfig); ok {
		maxAge = config.MaxAge
	}

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	header.Set("ETag", getETag(r.URL.String()))
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", maxAge))
}

func serveJSON(w http.ResponseWriter, r *http.Request, name string, v interface{}) {
	buffer, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "Cannot create "+name, http.StatusInternalServerError)
		return
	}

	setHeaders(w, r)
	if strings.Contains(r.Header.Get("Accept"), "application/ld+json") {
		w.Header().Set("Content-Type", "application/ld+json")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(buffer))
}

func getETag(str string) string {
	return fmt.Sprintf("\"%x\"", sha1.Sum([]byte(str)))
}
