package main

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/greut/instantiiif/cache"
	"github.com/greut/instantiiif/config"
	"github.com/greut/instantiiif/iiif"
)

// newFetcher builds the HTTP fetcher and the configured cache in front of
// it. The returned function releases the cache connections.
func newFetcher(c *config.Config, logger *log.Logger) (iiif.Fetcher, func(), error) {
	upstream := cache.NewHTTPFetcher(c.TimeoutDuration())
	if c.UserAgent != "" {
		upstream.UserAgent = c.UserAgent
	}
	upstream.Retries = c.Retries
	upstream.MaxBytes = c.Cache.MaxDocumentBytes

	switch c.Cache.Backend {
	case config.BackendGroupcache:
		logger.Debug("caching in groupcache", "size", c.Cache.Size, "ttl", c.Cache.TTLDuration())
		return cache.NewGroupFetcher("documents", c.Cache.SizeBytes, c.Cache.TTLDuration(), upstream), func() {}, nil
	case config.BackendRedis:
		logger.Debug("caching in redis", "addr", c.Cache.Redis.Addr, "ttl", c.Cache.TTLDuration())
		client := cache.NewRedisClient(c.Cache.Redis.Addr, c.Cache.Redis.Password, c.Cache.Redis.DB)
		closer := func() {
			if err := client.Close(); err != nil {
				logger.Warn("closing redis", "err", err)
			}
		}
		return cache.NewRedisFetcher(client, c.Cache.TTLDuration(), upstream, logger), closer, nil
	case config.BackendNone:
		return upstream, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalid, c.Cache.Backend)
}

// newRepo builds the repository described by the configuration.
func newRepo(c *config.Config, logger *log.Logger) (*iiif.Repo, func(), error) {
	providers, err := c.IIIFProviders()
	if err != nil {
		return nil, nil, err
	}
	for i, p := range c.Providers {
		if p.ManifestPattern == "" {
			logger.Warn("skipping provider without manifestPattern", "index", i, "id", p.ID)
		}
	}
	if len(providers) == 0 {
		logger.Warn("no IIIF provider configured, nothing will resolve")
	}

	fetcher, closer, err := newFetcher(c, logger)
	if err != nil {
		return nil, nil, err
	}

	repo := iiif.NewRepo(providers, fetcher,
		iiif.WithLandingLabels(c.LandingLabels),
		iiif.WithLogger(logger),
	)
	return repo, closer, nil
}
