package iiif

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ContextKey is the cache key to use.
type ContextKey string

const (
	repoKey      = ContextKey("repo")
	configKey    = ContextKey("config")
	requestIDKey = ContextKey("requestID")
	loggerKey    = ContextKey("logger")
)

// WithRepo sets the repository resolving the titles.
func WithRepo(h http.Handler, repo *Repo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), repoKey, repo)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithConfig sets the IIIF server configuration.
func WithConfig(h http.Handler, config *ServerConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), configKey, config)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithRequestID tags every request with an id, taken from the X-Request-Id
// header when the client sent a valid one, and a logger carrying it.
func WithRequestID(h http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		if err != nil {
			id = uuid.New()
		}
		w.Header().Set("X-Request-Id", id.String())

		ctx := context.WithValue(r.Context(), requestIDKey, id.String())
		ctx = context.WithValue(ctx, loggerKey, logger.With("request_id", id.String()))
		r = r.WithContext(ctx)

		debug(ctx, "%s %s", r.Method, r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return logger
	}
	return log.Default()
}

func debug(ctx context.Context, format string, args ...interface{}) {
	loggerFrom(ctx).Debugf(format, args...)
}
