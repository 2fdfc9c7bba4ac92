package ports

import (
	"context"

	"github.com/inkpress/blog-api/internal/core/domain"
)

// CommentThread is a top-level comment together with its replies.
type CommentThread struct {
	Comment *domain.Comment
	Replies []*domain.Comment
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListByPost returns all comments on a post ordered by creation time.
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*domain.Comment, error)
	// Tombstone blanks the content and marks the comment deleted, keeping
	// the node so replies stay attached.
	Tombstone(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CreateCommentInput is the DTO for posting a comment.
type CreateCommentInput struct {
	PostID   string
	ParentID string
	Content  string
	Author   domain.Author
}

// CommentService implements threaded comment operations.
type CommentService interface {
	Create(ctx context.Context, in CreateCommentInput) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]CommentThread, error)
	Update(ctx context.Context, id, content, viewerID, viewerRole string) (*domain.Comment, error)
	Delete(ctx context.Context, id, viewerID, viewerRole string) error
}
