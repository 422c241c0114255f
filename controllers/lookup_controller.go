package controllers

import (
	"net/http"

	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
)

// LookupController serves the public customer lookup
type LookupController struct {
	jobs *services.JobService
}

// NewLookupController creates the controller
func NewLookupController(jobs *services.JobService) *LookupController {
	return &LookupController{jobs: jobs}
}

// Lookup handles GET /api/v1/lookup?code= - an unknown code is a normal "not found" answer, not an error
func (lc *LookupController) Lookup(c *gin.Context) {
	job, found, err := lc.jobs.Lookup(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondServiceError(c, err, "look up job")
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"found":   false,
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"found":   true,
		"data":    newPublicJobView(job),
	})
}
