package ports

import (
	"context"

	"github.com/inkpress/blog-api/internal/core/domain"
)

// Paging bounds applied by Normalise.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// ListPostsFilter carries all query parameters for listing posts.
type ListPostsFilter struct {
	Status   string // optional: "draft" or "published"; drafts only for the author/admin view
	Tag      string // optional: posts carrying this tag
	AuthorID string // optional: scoped to one author
	Search   string // optional: partial match on title
	Page     int    // 1-based
	Limit    int    // rows per page, capped at MaxPageLimit
}

// Normalise clamps Page and Limit to their allowed ranges. Responses must
// echo the normalised values so pagination metadata matches the page served.
func (f *ListPostsFilter) Normalise() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	// List returns a page of posts matching filter and the total count.
	List(ctx context.Context, filter ListPostsFilter) ([]*domain.Post, int64, error)
	Update(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string, by int64) error
}

// CreatePostInput is the DTO for creating a post.
type CreatePostInput struct {
	Title         string
	Content       string
	Excerpt       string
	Tags          []string
	Status        string
	CoverImageURL string
	Author        domain.Author
}

// UpdatePostInput carries the editable post fields; nil means unchanged.
type UpdatePostInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Tags          *[]string
	Status        *string
	CoverImageURL *string
}

// PostService implements post CRUD with ownership checks and cache
// invalidation on writes.
type PostService interface {
	Create(ctx context.Context, in CreatePostInput) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug, viewerID, viewerRole string) (*domain.Post, error)
	List(ctx context.Context, filter ListPostsFilter, viewerID, viewerRole string) ([]*domain.Post, int64, error)
	Update(ctx context.Context, id string, in UpdatePostInput, viewerID, viewerRole string) (*domain.Post, error)
	Delete(ctx context.Context, id, viewerID, viewerRole string) error
}
