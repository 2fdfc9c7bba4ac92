package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

type stubPostService struct {
	listFn func(ctx context.Context, filter ports.ListPostsFilter, viewerID, viewerRole string) ([]*domain.Post, int64, error)
}

func (s *stubPostService) Create(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	return nil, domain.ErrPostNotFound
}

func (s *stubPostService) GetBySlug(ctx context.Context, slug, viewerID, viewerRole string) (*domain.Post, error) {
	return nil, domain.ErrPostNotFound
}

func (s *stubPostService) List(ctx context.Context, filter ports.ListPostsFilter, viewerID, viewerRole string) ([]*domain.Post, int64, error) {
	return s.listFn(ctx, filter, viewerID, viewerRole)
}

func (s *stubPostService) Update(ctx context.Context, id string, in ports.UpdatePostInput, viewerID, viewerRole string) (*domain.Post, error) {
	return nil, domain.ErrPostNotFound
}

func (s *stubPostService) Delete(ctx context.Context, id, viewerID, viewerRole string) error {
	return domain.ErrPostNotFound
}

// publishedPage returns n published post fixtures.
func publishedPage(n int) []*domain.Post {
	posts := make([]*domain.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, &domain.Post{
			ID:     fmt.Sprintf("post-%d", i+1),
			Slug:   fmt.Sprintf("post-%d", i+1),
			Title:  fmt.Sprintf("Post %d", i+1),
			Status: domain.PostPublished,
		})
	}
	return posts
}

type listResponseBody struct {
	Data       []json.RawMessage `json:"data"`
	Pagination struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func TestPostHandler_List_ClampsPaginationMetadata(t *testing.T) {
	var seenFilter ports.ListPostsFilter
	svc := &stubPostService{
		listFn: func(_ context.Context, filter ports.ListPostsFilter, _, _ string) ([]*domain.Post, int64, error) {
			seenFilter = filter
			return publishedPage(filter.Limit), 120, nil
		},
	}
	h := NewPostHandler(svc, nil)

	c, rec := newAuthTestContext(t, http.MethodGet, "/posts?limit=1000", "")
	if err := h.List(c); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if seenFilter.Limit != ports.MaxPageLimit {
		t.Fatalf("expected service to receive limit %d, got %d", ports.MaxPageLimit, seenFilter.Limit)
	}

	var body listResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data) != ports.MaxPageLimit {
		t.Fatalf("expected %d items, got %d", ports.MaxPageLimit, len(body.Data))
	}
	if body.Pagination.Limit != ports.MaxPageLimit {
		t.Fatalf("expected echoed limit %d, got %d", ports.MaxPageLimit, body.Pagination.Limit)
	}
	if body.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages for total=120 at limit=50, got %d", body.Pagination.TotalPages)
	}
	if body.Pagination.Page != 1 {
		t.Fatalf("expected page 1, got %d", body.Pagination.Page)
	}
}

func TestPostHandler_List_DefaultsPagination(t *testing.T) {
	svc := &stubPostService{
		listFn: func(_ context.Context, filter ports.ListPostsFilter, _, _ string) ([]*domain.Post, int64, error) {
			return publishedPage(filter.Limit), 25, nil
		},
	}
	h := NewPostHandler(svc, nil)

	c, rec := newAuthTestContext(t, http.MethodGet, "/posts", "")
	if err := h.List(c); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var body listResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Pagination.Limit != ports.DefaultPageLimit {
		t.Fatalf("expected default limit %d, got %d", ports.DefaultPageLimit, body.Pagination.Limit)
	}
	if body.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages for total=25 at limit=10, got %d", body.Pagination.TotalPages)
	}
}
