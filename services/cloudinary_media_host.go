package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryMediaHost uploads photos with an unsigned upload preset.
// Deleting needs API credentials; without them old photos stay in the media library.
type CloudinaryMediaHost struct {
	cld          *cloudinary.Cloudinary
	cloudName    string
	uploadPreset string
	canDestroy   bool
}

// NewCloudinaryMediaHost creates a Cloudinary media host from configuration
func NewCloudinaryMediaHost(cfg *config.Config) (*CloudinaryMediaHost, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	if base := strings.TrimRight(cfg.CloudinaryAPIBase, "/"); base != "" {
		cld.Upload.Config.API.UploadPrefix = base
	}

	return &CloudinaryMediaHost{
		cld:          cld,
		cloudName:    cfg.CloudinaryCloudName,
		uploadPreset: cfg.CloudinaryUploadPreset,
		canDestroy:   cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "",
	}, nil
}

// Upload sends the file through the unsigned preset and returns secure_url
func (h *CloudinaryMediaHost) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	res, err := h.cld.Upload.UnsignedUpload(ctx, file, h.uploadPreset, uploader.UploadParams{})
	if err != nil {
		return "", fmt.Errorf("failed to call upload endpoint: %w", err)
	}

	// API errors come back in the body, not as a Go error
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}

	return res.SecureURL, nil
}

// Delete destroys the asset behind url when API credentials are configured
func (h *CloudinaryMediaHost) Delete(ctx context.Context, url string) error {
	publicID, ok := cloudinaryPublicID(url, h.cloudName)
	if !ok {
		return nil
	}
	if !h.canDestroy {
		logger.WithContext(ctx).Debug("no cloudinary credentials, leaving asset in place",
			zap.String("public_id", publicID),
		)
		return nil
	}

	res, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary asset: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete cloudinary asset: %s", res.Error.Message)
	}

	logger.WithContext(ctx).Debug("deleted cloudinary asset",
		zap.String("public_id", publicID),
		zap.String("result", res.Result),
	)
	return nil
}

// cloudinaryPublicID extracts the public id from a delivery URL of this cloud,
// e.g. .../demo/image/upload/v1712/jobs/before.jpg -> jobs/before
func cloudinaryPublicID(url, cloudName string) (string, bool) {
	marker := "/" + cloudName + "/image/upload/"
	i := strings.Index(url, marker)
	if cloudName == "" || i < 0 {
		return "", false
	}

	rest := url[i+len(marker):]
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 1 && isVersionSegment(segments[0]) {
		segments = segments[1:]
	}

	id := strings.Join(segments, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	return id, id != ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
