package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent identifies the fetcher to IIIF providers.
const DefaultUserAgent = "instantiiif/1.0 (+https://github.com/greut/instantiiif)"

// HTTPFetcher downloads documents over HTTP.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	// MaxBytes limits the size of a document, zero means no limit.
	MaxBytes int64
	// Retries is the number of additional attempts on transient failures.
	Retries    int
	RetryDelay time.Duration
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  DefaultUserAgent,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Fetch downloads url. Network errors and 5xx responses are retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, f.Retries+1, f.RetryDelay, func() error {
		var err error
		body, err = f.fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "application/ld+json, application/json;q=0.9, */*;q=0.1")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 {
			return nil, Retryable(err)
		}
		return nil, err
	}

	var reader io.Reader = resp.Body
	if f.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	if f.MaxBytes > 0 && int64(len(body)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrUnavailable, url, f.MaxBytes)
	}
	return body, nil
}
