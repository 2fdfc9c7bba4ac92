package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubResponseCache struct {
	entries map[string][]byte
	sets    int
}

func newStubResponseCache() *stubResponseCache {
	return &stubResponseCache{entries: make(map[string][]byte)}
}

func (s *stubResponseCache) Get(_ context.Context, key string) ([]byte, error) {
	if body, ok := s.entries[key]; ok {
		return body, nil
	}
	return nil, errors.New("cache miss")
}

func (s *stubResponseCache) Set(_ context.Context, key string, body []byte) error {
	s.entries[key] = body
	s.sets++
	return nil
}

func cacheRequest(t *testing.T, mw echo.MiddlewareFunc, method, target, authHeader string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec
}

func jsonHandler(body string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(body))
	}
}

func TestCache_MissThenHit(t *testing.T) {
	store := newStubResponseCache()
	mw := Cache(store)

	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSONBlob(http.StatusOK, []byte(`{"posts":[]}`))
	}

	first := cacheRequest(t, mw, http.MethodGet, "/posts?page=1", "", handler)
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected MISS, got %s", first.Header().Get("X-Cache"))
	}

	second := cacheRequest(t, mw, http.MethodGet, "/posts?page=1", "", handler)
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected HIT, got %s", second.Header().Get("X-Cache"))
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, expected 1", calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatal("cached body differs from original")
	}
}

func TestCache_QueryIsPartOfKey(t *testing.T) {
	store := newStubResponseCache()
	mw := Cache(store)

	cacheRequest(t, mw, http.MethodGet, "/posts?page=1", "", jsonHandler(`{"page":1}`))
	rec := cacheRequest(t, mw, http.MethodGet, "/posts?page=2", "", jsonHandler(`{"page":2}`))
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatal("different query strings must not share a cache entry")
	}
}

func TestCache_AuthenticatedRequestsBypass(t *testing.T) {
	store := newStubResponseCache()
	mw := Cache(store)

	rec := cacheRequest(t, mw, http.MethodGet, "/posts", "Bearer token", jsonHandler(`{"posts":["draft"]}`))
	if rec.Header().Get("X-Cache") != "" {
		t.Fatal("authenticated request must bypass the cache")
	}
	if store.sets != 0 {
		t.Fatal("authenticated response must not be stored")
	}
}

func TestCache_NonGetBypasses(t *testing.T) {
	store := newStubResponseCache()
	mw := Cache(store)

	rec := cacheRequest(t, mw, http.MethodPost, "/posts", "", jsonHandler(`{"id":"post-1"}`))
	if rec.Header().Get("X-Cache") != "" {
		t.Fatal("POST must bypass the cache")
	}
	if store.sets != 0 {
		t.Fatal("POST response must not be stored")
	}
}

func TestCache_ErrorResponsesNotStored(t *testing.T) {
	store := newStubResponseCache()
	mw := Cache(store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/posts/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.JSONBlob(http.StatusNotFound, []byte(`{"error":"not found"}`))
	}
	if err := mw(handler)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if store.sets != 0 {
		t.Fatal("non-200 response must not be stored")
	}
}
