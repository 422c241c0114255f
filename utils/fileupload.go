package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"go.uber.org/zap"
)

const (
	// DefaultMaxFileSize is 5MB, small enough for uploads from a phone
	DefaultMaxFileSize = 5 * 1024 * 1024
)

// AllowedImageExtensions are the photo formats accepted for job photos
var AllowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size.
// A non-positive maxSize uses DefaultMaxFileSize.
func ValidateImageFile(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return &FileUploadError{Code: "MISSING_FILE", Message: "An image file is required"}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	// Check file size
	if fileHeader.Size > maxSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", maxSize/(1024*1024)),
		}
	}

	// Check file extension
	if _, ok := ImageContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only JPG, PNG, WEBP or HEIC images are allowed",
		}
	}

	return nil
}

// ImageContentType maps a filename to its image MIME type
func ImageContentType(filename string) (string, bool) {
	ct, ok := AllowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// SaveUploadedFile saves the uploaded file to the local filesystem
// Returns the file name relative to uploadDir
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir string) (filename string, err error) {
	// Create uploads directory if it doesn't exist
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Unique name so two photos with the same camera filename do not collide
	filename = fmt.Sprintf("%d_%s",
		time.Now().UnixNano(),
		strings.ReplaceAll(filepath.Base(fileHeader.Filename), " ", "_"))

	fullPath := filepath.Join(uploadDir, filename)

	// Open the uploaded file
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			// Only read from, so not worth failing the save
			logger.L().Warn("failed to close uploaded file", zap.Error(closeErr))
		}
	}()

	// Create the destination file
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	// Copy the file
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

// IsSafeFilename rejects names that could escape the upload directory
func IsSafeFilename(filename string) bool {
	if filename == "" {
		return false
	}
	return !strings.Contains(filename, "..") && !strings.ContainsAny(filename, `/\`)
}
