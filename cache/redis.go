package cache

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisFetcher caches documents in redis, so that several instances share
// what they fetched. A redis outage degrades to fetching upstream.
type RedisFetcher struct {
	client   redis.Cmdable
	upstream Fetcher
	ttl      time.Duration
	prefix   string
	logger   *log.Logger
	flight   singleflight.Group
}

// NewRedisFetcher creates a fetcher keeping documents for ttl.
func NewRedisFetcher(client redis.Cmdable, ttl time.Duration, upstream Fetcher, logger *log.Logger) *RedisFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisFetcher{
		client:   client,
		upstream: upstream,
		ttl:      ttl,
		prefix:   "instantiiif:doc:",
		logger:   logger.WithPrefix("redis"),
	}
}

// NewRedisClient connects to a redis server.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Fetch returns the cached document, fetching and storing it on a miss.
func (f *RedisFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := f.prefix + Hash(url)

	body, err := f.client.Get(ctx, key).Bytes()
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, redis.Nil) {
		f.logger.Debug("get failed", "key", key, "err", err)
	}

	v, err, _ := f.flight.Do(key, func() (interface{}, error) {
		body, err := f.upstream.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := f.client.Set(ctx, key, body, f.ttl).Err(); err != nil {
			f.logger.Debug("set failed", "key", key, "err", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
