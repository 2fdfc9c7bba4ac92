package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/api/metrics"
)

// ResponseCache abstracts the Redis-backed response store.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, body []byte) error
}

// Cache serves anonymous GET responses from the cache and fills it on miss.
// Authenticated requests bypass the cache entirely: their responses can be
// viewer-specific (drafts, ownership) and must never be shared.
// Key format: <METHOD>:<path>?<query>
func Cache(store ResponseCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet || req.Header.Get("Authorization") != "" {
				return next(c)
			}

			key := cacheKey(c)
			if body, err := store.Get(req.Context(), key); err == nil {
				metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}
			metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

			rec := &recordingWriter{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK {
				// A failed store write surfaces as a miss on the next request.
				_ = store.Set(req.Context(), key, rec.body.Bytes())
			}
			return nil
		}
	}
}

func cacheKey(c echo.Context) string {
	req := c.Request()
	key := req.Method + ":" + req.URL.Path
	if q := req.URL.RawQuery; q != "" {
		key += "?" + q
	}
	return key
}

// recordingWriter tees the response body so a 200 can be stored after the
// handler ran.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
