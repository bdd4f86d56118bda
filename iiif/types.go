package iiif

import "context"

// ServerConfig stores the HTTP service configuration.
type ServerConfig struct {
	// MaxAge is the Cache-Control max-age, in seconds.
	MaxAge int64
}

// ObjectInfo describes a resolved object, as served by info.json.
type ObjectInfo struct {
	Title       string `json:"title" yaml:"title"`
	Provider    string `json:"provider" yaml:"provider"`
	ObjectID    string `json:"objectId" yaml:"objectId"`
	ManifestURL string `json:"manifest" yaml:"manifest"`
	Version     int    `json:"version" yaml:"version"`
	Pages       int    `json:"pages" yaml:"pages"`
	Width       int    `json:"width" yaml:"width"`
	Height      int    `json:"height" yaml:"height"`
	FullURL     string `json:"full,omitempty" yaml:"full,omitempty"`
	Landing     string `json:"landing,omitempty" yaml:"landing,omitempty"`
	MimeType    string `json:"mime" yaml:"mime"`
	MediaType   string `json:"mediaType" yaml:"mediaType"`
}

// Describe gathers the ObjectInfo of a resolver, or nil when unresolved.
func Describe(ctx context.Context, r *Resolver) *ObjectInfo {
	obj := r.Resolve(ctx)
	if obj == nil {
		return nil
	}

	width, height := r.Dimensions(ctx, 1)
	return &ObjectInfo{
		Title:       r.Title(),
		Provider:    obj.Provider,
		ObjectID:    obj.ObjectID,
		ManifestURL: obj.ManifestURL,
		Version:     obj.Manifest.Version(),
		Pages:       len(obj.Manifest.Canvases()),
		Width:       width,
		Height:      height,
		FullURL:     r.FullURL(ctx),
		Landing:     r.DescriptionURL(ctx),
		MimeType:    MimeType,
		MediaType:   MediaType,
	}
}
