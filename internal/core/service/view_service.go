package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/core/ports"
)

// ViewDedup abstracts the per-viewer view-count throttle (Redis). A given
// viewer counts at most once per post per TTL window.
type ViewDedup interface {
	IsDuplicate(ctx context.Context, postID, viewerHash string) (bool, error)
	Mark(ctx context.Context, postID, viewerHash string) error
}

type viewService struct {
	repo  ports.PostRepository
	dedup ViewDedup
	log   zerolog.Logger
}

// NewViewService returns a ViewService that throttles per viewer and
// increments the post's view count.
func NewViewService(repo ports.PostRepository, dedup ViewDedup, log zerolog.Logger) ports.ViewService {
	return &viewService{repo: repo, dedup: dedup, log: log}
}

// Process deduplicates and counts one post view.
func (s *viewService) Process(ctx context.Context, view ports.PostViewInput) error {
	isDup, err := s.dedup.IsDuplicate(ctx, view.PostID, view.ViewerHash)
	if err != nil {
		s.log.Warn().Err(err).Str("post_id", view.PostID).Msg("view dedup check failed, counting anyway")
	} else if isDup {
		return nil
	}

	if err := s.dedup.Mark(ctx, view.PostID, view.ViewerHash); err != nil {
		s.log.Warn().Err(err).Str("post_id", view.PostID).Msg("failed to set view dedup key")
	}

	if err := s.repo.IncrementViews(ctx, view.PostID, 1); err != nil {
		return fmt.Errorf("process view: %w", err)
	}
	return nil
}
