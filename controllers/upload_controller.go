package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"github.com/gin-gonic/gin"
)

// ServeUpload handles GET /api/v1/uploads/:filename - serves photos stored by the local media host
func ServeUpload(uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")

		if filename == "" {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required", nil)
			return
		}

		if !utils.IsSafeFilename(filename) {
			respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename", nil)
			return
		}

		contentType, ok := utils.ImageContentType(filename)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only JPG, PNG, WEBP or HEIC images are served", nil)
			return
		}

		filePath := filepath.Join(uploadDir, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found", nil)
			return
		}

		c.Header("Content-Type", contentType)
		c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
		c.File(filePath)
	}
}
