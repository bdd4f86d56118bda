package iiif

import (
	"context"

	"github.com/charmbracelet/log"
)

// Fetcher retrieves remote text documents (manifests and info.json). Any
// error, or an empty body, means the document is unavailable. Caching,
// timeouts and retries are the fetcher's business.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Repo holds the static configuration shared by resolvers: the ordered
// provider list, the landing page labels and the fetcher.
type Repo struct {
	providers []Provider
	labels    map[string][]string
	fetcher   Fetcher
	logger    *log.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLandingLabels replaces DefaultLandingLabels.
func WithLandingLabels(labels map[string][]string) Option {
	return func(r *Repo) {
		r.labels = labels
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repo) {
		r.logger = logger
	}
}

// NewRepo creates a repository over providers, tried in order.
func NewRepo(providers []Provider, fetcher Fetcher, opts ...Option) *Repo {
	r := &Repo{
		providers: providers,
		labels:    DefaultLandingLabels,
		fetcher:   fetcher,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithPrefix("iiif")
	return r
}

// Providers returns the configured providers.
func (r *Repo) Providers() []Provider {
	return r.providers
}

// Resolver returns a fresh resolver for title. Resolvers remember what they
// fetched, so one should live no longer than the request it serves.
func (r *Repo) Resolver(title string) *Resolver {
	return &Resolver{
		title:        title,
		repo:         r,
		capabilities: make(map[string]Capability),
	}
}
