package ports

import (
	"context"
	"time"
)

// PostViewInput is the DTO passed from the transport layer to ViewService.
// ViewerHash identifies the viewer without storing the raw address.
type PostViewInput struct {
	PostID     string
	ViewerHash string
	Timestamp  time.Time
}

// ViewService processes post-view events off the request path.
type ViewService interface {
	Process(ctx context.Context, view PostViewInput) error
}
