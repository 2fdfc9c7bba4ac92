package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/api/metrics"
	"github.com/inkpress/blog-api/internal/core/ports"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var ErrUploadTooLarge = fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
var ErrUnsupportedImageType = fmt.Errorf("unsupported image content type")

type MediaService struct {
	store ports.ImageStore
	log   zerolog.Logger
}

func NewMediaService(store ports.ImageStore, log zerolog.Logger) *MediaService {
	return &MediaService{store: store, log: log}
}

// Upload gates size and content type, then pushes the image to the external
// host under a random public ID.
func (s *MediaService) Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*ports.UploadResult, error) {
	if size > maxUploadBytes {
		metrics.MediaUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUploadTooLarge
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		metrics.MediaUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUnsupportedImageType
	}

	publicID := uuid.NewString()
	result, err := s.store.Upload(ctx, io.LimitReader(r, maxUploadBytes), publicID)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("upload image: %w", err)
	}

	s.log.Info().Str("public_id", result.PublicID).Str("filename", filename).Int64("bytes", result.Bytes).Msg("image uploaded")
	metrics.MediaUploadsTotal.WithLabelValues("success").Inc()
	return result, nil
}
