package cache

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestRedisFetcher(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	client := NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer client.Close()

	upstream := &countingFetcher{}
	f := NewRedisFetcher(client, time.Minute, upstream, log.New(io.Discard))
	f.prefix = "instantiiif:test:" + uuid.New().String() + ":"
	ctx := context.Background()

	url := "https://example.org/manifest"
	for i := 0; i < 3; i++ {
		body, err := f.Fetch(ctx, url)
		if err != nil {
			t.Fatal(err)
		}
		if string(body) != "doc:"+url {
			t.Errorf("body: got %#v", string(body))
		}
	}
	if n := atomic.LoadInt32(&upstream.calls); n != 1 {
		t.Errorf("upstream called %d times want 1", n)
	}

	client.Del(ctx, f.prefix+Hash(url))
}

func TestRedisFetcherDegrades(t *testing.T) {
	// nothing listens there
	client := NewRedisClient("127.0.0.1:1", "", 0)
	defer client.Close()

	upstream := &countingFetcher{}
	f := NewRedisFetcher(client, time.Minute, upstream, log.New(io.Discard))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := f.Fetch(ctx, "https://example.org/manifest")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(body) != "doc:https://example.org/manifest" {
		t.Errorf("body: got %#v", string(body))
	}
}
