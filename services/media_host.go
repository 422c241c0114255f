package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/bagusrestoration/bengkel-progress-api/config"
)

// MediaHost stores job photos and returns a publicly fetchable URL
type MediaHost interface {
	// Upload stores one image and returns its public URL
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// Delete removes a previously uploaded image. Best effort: callers log and move on.
	Delete(ctx context.Context, url string) error
}

// NewMediaHost builds the media host selected by MEDIA_PROVIDER
func NewMediaHost(ctx context.Context, cfg *config.Config) (MediaHost, error) {
	switch cfg.MediaProvider {
	case "cloudinary":
		return NewCloudinaryMediaHost(cfg)
	case "s3":
		return NewS3MediaHost(ctx, cfg)
	case "local":
		return NewLocalMediaHost(cfg.UploadDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported media provider %q", cfg.MediaProvider)
	}
}
