package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingFetcher struct {
	calls int32
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("doc:" + url), nil
}

func TestGroupFetcher(t *testing.T) {
	upstream := &countingFetcher{}
	f := NewGroupFetcher("test-group-fetcher", 1<<20, time.Hour, upstream)
	now := time.Unix(7200, 0)
	f.now = func() time.Time { return now }
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := f.Fetch(ctx, "https://example.org/a")
			if err != nil || string(body) != "doc:https://example.org/a" {
				t.Errorf("got %#v, %v", string(body), err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&upstream.calls); n != 1 {
		t.Errorf("upstream called %d times want 1", n)
	}

	// same window
	now = now.Add(30 * time.Minute)
	if _, err := f.Fetch(ctx, "https://example.org/a"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&upstream.calls); n != 1 {
		t.Errorf("upstream called %d times want 1", n)
	}

	// next window
	now = now.Add(time.Hour)
	if _, err := f.Fetch(ctx, "https://example.org/a"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&upstream.calls); n != 2 {
		t.Errorf("upstream called %d times want 2", n)
	}
}

func TestGroupFetcherErrorsAreNotCached(t *testing.T) {
	upstream := &countingFetcher{err: ErrUnavailable}
	f := NewGroupFetcher("test-group-fetcher-errors", 1<<20, time.Hour, upstream)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(ctx, "https://example.org/missing"); !errors.Is(err, ErrUnavailable) {
			t.Errorf("got %v want ErrUnavailable", err)
		}
	}
	if n := atomic.LoadInt32(&upstream.calls); n != 2 {
		t.Errorf("upstream called %d times want 2", n)
	}
}

func TestGroupKey(t *testing.T) {
	var tests = []struct {
		ttl time.Duration
		now int64
		key string
	}{
		{time.Hour, 7199, "1 https://example.org/a b"},
		{time.Hour, 7200, "2 https://example.org/a b"},
		{0, 7200, "0 https://example.org/a b"},
		{time.Millisecond, 7200, "0 https://example.org/a b"},
	}

	for _, test := range tests {
		now := time.Unix(test.now, 0)
		f := &GroupFetcher{ttl: test.ttl, now: func() time.Time { return now }}
		key := f.key("https://example.org/a b")
		if key != test.key {
			t.Errorf("%v at %d: got %#v want %#v", test.ttl, test.now, key, test.key)
		}
		if url := urlOf(key); url != "https://example.org/a b" {
			t.Errorf("urlOf(%#v) got %#v", key, url)
		}
	}
}
