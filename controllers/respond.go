package controllers

import (
	"errors"
	"net/http"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondServiceError maps service errors onto the error envelope.
// action completes the sentence "Failed to ..." for unexpected failures.
func respondServiceError(c *gin.Context, err error, action string) {
	var validationErr *services.ValidationError
	var fileErr *utils.FileUploadError

	switch {
	case errors.As(err, &validationErr):
		details := gin.H{"reason": validationErr.Code}
		if validationErr.Field != "" {
			details["field"] = validationErr.Field
		}
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, details)
	case errors.As(err, &fileErr):
		respondError(c, http.StatusBadRequest, fileErr.Code, fileErr.Message, nil)
	case errors.Is(err, services.ErrJobNotFound):
		respondError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
	case errors.Is(err, utils.ErrMissingContactNumber):
		respondError(c, http.StatusUnprocessableEntity, "MISSING_CONTACT_NUMBER", "Job has no contact number", nil)
	case errors.Is(err, services.ErrUploadFailed):
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("photo upload failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "UPLOAD_FAILED", "Failed to upload photo", nil)
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("failed to "+action, zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+action, nil)
	}
}
