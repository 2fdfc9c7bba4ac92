package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

type CommentService struct {
	repo     ports.CommentRepository
	postRepo ports.PostRepository
	log      zerolog.Logger
}

func NewCommentService(repo ports.CommentRepository, postRepo ports.PostRepository, log zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, postRepo: postRepo, log: log}
}

// Create posts a comment. The post must exist and be published; a reply's
// parent must be a top-level comment on the same post (one thread level).
func (s *CommentService) Create(ctx context.Context, in ports.CreateCommentInput) (*domain.Comment, error) {
	post, err := s.postRepo.FindByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.Status != domain.PostPublished {
		return nil, domain.ErrPostNotFound
	}

	if in.ParentID != "" {
		parent, err := s.repo.FindByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, fmt.Errorf("create comment: %w: parent belongs to another post", domain.ErrCommentNotFound)
		}
		if parent.ParentID != "" {
			// Flatten deeper nesting onto the top-level parent.
			in.ParentID = parent.ParentID
		}
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info().Str("comment_id", comment.ID).Str("post_id", in.PostID).Msg("comment created")
	return comment, nil
}

// ListByPost returns the post's comments as top-level threads with replies
// nested under their parent, both ordered oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]ports.CommentThread, error) {
	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	threads := make([]ports.CommentThread, 0)
	index := make(map[string]int)
	for _, c := range comments {
		if c.ParentID == "" {
			index[c.ID] = len(threads)
			threads = append(threads, ports.CommentThread{Comment: c, Replies: []*domain.Comment{}})
		}
	}
	for _, c := range comments {
		if c.ParentID == "" {
			continue
		}
		if i, ok := index[c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	return threads, nil
}

// Update edits a comment's content. Only the author or an admin may edit;
// tombstoned comments are immutable.
func (s *CommentService) Update(ctx context.Context, id, content, viewerID, viewerRole string) (*domain.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Deleted {
		return nil, domain.ErrCommentNotFound
	}
	if !comment.Editable(viewerID, viewerRole) {
		return nil, domain.ErrForbidden
	}
	return s.repo.UpdateContent(ctx, id, content)
}

// Delete removes a comment. A parent with replies is tombstoned so the
// thread survives; leaf comments are removed outright.
func (s *CommentService) Delete(ctx context.Context, id, viewerID, viewerRole string) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !comment.Editable(viewerID, viewerRole) {
		return domain.ErrForbidden
	}

	if comment.ParentID == "" {
		siblings, err := s.repo.ListByPost(ctx, comment.PostID)
		if err != nil {
			return err
		}
		for _, c := range siblings {
			if c.ParentID == comment.ID {
				return s.repo.Tombstone(ctx, id)
			}
		}
	}
	return s.repo.Delete(ctx, id)
}
