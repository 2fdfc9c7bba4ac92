package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/api/metrics"
	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

const excerptRunes = 200

// CacheInvalidator abstracts the response cache (Redis). Post writes
// invalidate cached listing and detail responses by key prefix.
type CacheInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type PostService struct {
	repo  ports.PostRepository
	cache CacheInvalidator
	log   zerolog.Logger
}

func NewPostService(repo ports.PostRepository, cache CacheInvalidator, log zerolog.Logger) *PostService {
	return &PostService{repo: repo, cache: cache, log: log}
}

// Create persists a new post. The slug is derived from the title; on
// collision a short random suffix is appended and the insert retried once.
func (s *PostService) Create(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	status := domain.PostStatus(in.Status)
	if status == "" {
		status = domain.PostDraft
	}
	if status != domain.PostDraft && status != domain.PostPublished {
		return nil, fmt.Errorf("create post: unknown status %q", in.Status)
	}

	slug := slugify(in.Title)
	if slug == "" {
		// Titles with no letters or digits slugify to nothing; an empty
		// slug would make the post unreachable by GET /posts/:slug.
		slug = "post-" + randomSuffix()
	}

	now := time.Now().UTC()
	post := &domain.Post{
		Slug:          slug,
		Title:         in.Title,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Tags:          in.Tags,
		Status:        status,
		Author:        in.Author,
		CoverImageURL: in.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Excerpt == "" {
		post.Excerpt = makeExcerpt(in.Content)
	}

	err := s.repo.Create(ctx, post)
	if errors.Is(err, domain.ErrSlugTaken) {
		post.Slug = post.Slug + "-" + randomSuffix()
		err = s.repo.Create(ctx, post)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Str("slug", post.Slug).Str("author_id", post.Author.ID).Msg("post created")
	metrics.PostsCreatedTotal.WithLabelValues(string(post.Status)).Inc()
	s.invalidate(ctx)
	return post, nil
}

// GetBySlug returns the post when the viewer may see it. Drafts belong to
// their author (and admins); anyone else gets a not-found, not a forbidden,
// so draft slugs are not discoverable.
func (s *PostService) GetBySlug(ctx context.Context, slug, viewerID, viewerRole string) (*domain.Post, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Visible(viewerID, viewerRole) {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}

// List returns a page of posts. Anonymous and non-admin viewers only see
// published posts unless they filter by their own author ID.
func (s *PostService) List(ctx context.Context, filter ports.ListPostsFilter, viewerID, viewerRole string) ([]*domain.Post, int64, error) {
	filter.Normalise()

	ownScope := viewerID != "" && filter.AuthorID == viewerID
	if viewerRole != domain.RoleAdmin && !ownScope {
		filter.Status = string(domain.PostPublished)
	}

	return s.repo.List(ctx, filter)
}

// Update applies the changed fields. Only the author or an admin may edit.
func (s *PostService) Update(ctx context.Context, id string, in ports.UpdatePostInput, viewerID, viewerRole string) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Editable(viewerID, viewerRole) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	if in.CoverImageURL != nil {
		post.CoverImageURL = *in.CoverImageURL
	}
	if in.Status != nil {
		next := domain.PostStatus(*in.Status)
		if next != domain.PostDraft && next != domain.PostPublished {
			return nil, fmt.Errorf("update post: unknown status %q", *in.Status)
		}
		post.Status = next
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// Delete removes the post. Only the author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, id, viewerID, viewerRole string) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !post.Editable(viewerID, viewerRole) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("post_id", id).Msg("post deleted")
	s.invalidate(ctx)
	return nil
}

func (s *PostService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, "GET:/posts"); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// slugify lowercases the title and collapses every non-alphanumeric run into
// a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			hyphen = false
		case !hyphen && b.Len() > 0:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func makeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptRunes {
		return content
	}
	return strings.TrimSpace(string(runes[:excerptRunes])) + "…"
}

func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06x", time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%06x", b)
}
