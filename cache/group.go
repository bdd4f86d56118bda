package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/groupcache"
)

// GroupFetcher caches documents in a groupcache group, shared with the
// peers of the pool. Concurrent fetches of a URL are collapsed into one.
//
// groupcache has no expiry, so keys carry the TTL window they were fetched
// in: once the window is over, the next fetch misses and the stale entry is
// left for the LRU to evict.
type GroupFetcher struct {
	group *groupcache.Group
	ttl   time.Duration
	now   func() time.Time
}

// NewGroupFetcher creates the named group, of cacheBytes, in front of
// upstream. Group names are process wide and must be unique.
func NewGroupFetcher(name string, cacheBytes int64, ttl time.Duration, upstream Fetcher) *GroupFetcher {
	f := &GroupFetcher{
		ttl: ttl,
		now: time.Now,
	}
	f.group = groupcache.NewGroup(name, cacheBytes, groupcache.GetterFunc(
		func(ctx context.Context, key string, dest groupcache.Sink) error {
			url := urlOf(key)
			body, err := upstream.Fetch(ctx, url)
			if err != nil {
				return err
			}
			return dest.SetProto(&Document{
				URL:       url,
				Body:      body,
				FetchedAt: f.now().Unix(),
			})
		},
	))
	return f
}

// Fetch returns the cached document, fetching it on a miss.
func (f *GroupFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var doc Document
	if err := f.group.Get(ctx, f.key(url), groupcache.ProtoSink(&doc)); err != nil {
		return nil, err
	}
	return doc.Body, nil
}

// Stats exposes the group counters.
func (f *GroupFetcher) Stats() groupcache.Stats {
	return f.group.Stats
}

func (f *GroupFetcher) key(url string) string {
	window := int64(f.ttl / time.Second)
	if window <= 0 {
		return "0 " + url
	}
	return fmt.Sprintf("%d %s", f.now().Unix()/window, url)
}

func urlOf(key string) string {
	if i := strings.IndexByte(key, ' '); i >= 0 {
		return key[i+1:]
	}
	return key
}

// ServePeers registers the groupcache peers. self is this node's base URL;
// the returned pool must be mounted under /_groupcache/. It can only be
// called once per process.
func ServePeers(self string, peers ...string) *groupcache.HTTPPool {
	pool := groupcache.NewHTTPPoolOpts(self, &groupcache.HTTPPoolOptions{BasePath: "/_groupcache/"})
	if len(peers) == 0 {
		peers = []string{self}
	}
	pool.Set(peers...)
	return pool
}
