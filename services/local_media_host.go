package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/bagusrestoration/bengkel-progress-api/utils"
)

// UploadsRoute is where the local media host serves stored files
const UploadsRoute = "/api/v1/uploads"

// LocalMediaHost keeps photos on disk for development setups
type LocalMediaHost struct {
	dir           string
	publicBaseURL string
}

// NewLocalMediaHost stores files in dir and links them under publicBaseURL
func NewLocalMediaHost(dir, publicBaseURL string) *LocalMediaHost {
	return &LocalMediaHost{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Dir returns the directory files are written to
func (h *LocalMediaHost) Dir() string {
	return h.dir
}

func (h *LocalMediaHost) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	filename, err := utils.SaveUploadedFile(fileHeader, h.dir)
	if err != nil {
		return "", err
	}
	return h.publicBaseURL + UploadsRoute + "/" + filename, nil
}

func (h *LocalMediaHost) Delete(ctx context.Context, url string) error {
	// URLs from other hosts are left alone
	prefix := h.publicBaseURL + UploadsRoute + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	filename := strings.TrimPrefix(url, prefix)
	if !utils.IsSafeFilename(filename) {
		return fmt.Errorf("refusing to delete %q", filename)
	}
	if err := os.Remove(filepath.Join(h.dir, filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
