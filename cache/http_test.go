package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/manifest":
			if ua := r.Header.Get("User-Agent"); ua != "tester" {
				t.Errorf("User-Agent: got %#v want tester", ua)
			}
			fmt.Fprint(w, `{"items": []}`)
		case "/large":
			fmt.Fprint(w, `{"padding": "0123456789"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := NewHTTPFetcher(time.Second)
	f.UserAgent = "tester"
	f.MaxBytes = 16
	ctx := context.Background()

	body, err := f.Fetch(ctx, ts.URL+"/manifest")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(body) != `{"items": []}` {
		t.Errorf("body: got %#v", string(body))
	}

	if _, err := f.Fetch(ctx, ts.URL+"/large"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("large document: got %v want ErrUnavailable", err)
	}

	_, err = f.Fetch(ctx, ts.URL+"/missing")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("missing document: got %v want a 404 StatusError", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("missing document: got %v want ErrUnavailable", err)
	}
}

func TestHTTPFetcherRetries(t *testing.T) {
	var tests = []struct {
		status  int
		retries int
		hits    int32
	}{
		{http.StatusServiceUnavailable, 2, 3},
		{http.StatusServiceUnavailable, 0, 1},
		{http.StatusNotFound, 2, 1},
	}

	for _, test := range tests {
		var hits int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(test.status)
		}))

		f := NewHTTPFetcher(time.Second)
		f.Retries = test.retries
		f.RetryDelay = time.Millisecond

		if _, err := f.Fetch(context.Background(), ts.URL); err == nil {
			t.Errorf("%d: expected an error", test.status)
		}
		if n := atomic.LoadInt32(&hits); n != test.hits {
			t.Errorf("%d with %d retries: got %d requests want %d", test.status, test.retries, n, test.hits)
		}
		ts.Close()
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		return Retryable(errors.New("flaky"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls want 1", calls)
	}
}
