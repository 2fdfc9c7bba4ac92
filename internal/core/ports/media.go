package ports

import (
	"context"
	"io"
)

// UploadResult describes a stored image on the external host.
type UploadResult struct {
	PublicID string
	URL      string
	Bytes    int64
	Format   string
}

// ImageStore abstracts the cloud image host.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// MediaService validates and uploads user-submitted images.
type MediaService interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*UploadResult, error)
}
