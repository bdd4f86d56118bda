// Package cache provides the fetchers used to retrieve IIIF manifests and
// image information documents: a plain HTTP fetcher, and caching layers in
// front of it backed by groupcache or redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable is returned when a document cannot be retrieved.
var ErrUnavailable = errors.New("document unavailable")

// Fetcher retrieves a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError is a non 2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d (%s)", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap makes every StatusError an ErrUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

// Hash computes the SHA-256 of a key, as hex.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
