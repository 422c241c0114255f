package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
)

// DefaultPingInterval keeps idle job streams alive through proxies
const DefaultPingInterval = 25 * time.Second

// JobController serves the staff job endpoints
type JobController struct {
	jobs         *services.JobService
	pingInterval time.Duration
}

// NewJobController creates the controller
func NewJobController(jobs *services.JobService) *JobController {
	return &JobController{jobs: jobs, pingInterval: DefaultPingInterval}
}

// CreateJobRequest is the intake form. Progress accepts numbers and numeric strings.
type CreateJobRequest struct {
	Name          string      `json:"name"`
	Plate         string      `json:"plate"`
	Code          string      `json:"code"`
	ContactNumber string      `json:"contact_number"`
	Status        string      `json:"status"`
	Detail        string      `json:"detail"`
	Progress      interface{} `json:"progress"`
}

// UpdateJobRequest is a partial edit; absent keys are left untouched
type UpdateJobRequest struct {
	Name          *string         `json:"name"`
	Plate         *string         `json:"plate"`
	Code          *string         `json:"code"`
	ContactNumber *string         `json:"contact_number"`
	Status        *string         `json:"status"`
	Detail        *string         `json:"detail"`
	Progress      json.RawMessage `json:"progress"`
}

func (r UpdateJobRequest) patch() (services.JobPatch, error) {
	p := services.JobPatch{
		Name:          r.Name,
		Plate:         r.Plate,
		Code:          r.Code,
		ContactNumber: r.ContactNumber,
		Status:        r.Status,
		Detail:        r.Detail,
	}
	if len(r.Progress) > 0 {
		if err := json.Unmarshal(r.Progress, &p.Progress); err != nil {
			return p, err
		}
		p.ProgressSet = true
	}
	return p, nil
}

// List handles GET /api/v1/jobs
func (jc *JobController) List(c *gin.Context) {
	q := services.ListQuery{
		Search:         c.Query("search"),
		Status:         c.Query("status"),
		SortByActivity: c.Query("sort") == "activity",
		Page:           atoiOrZero(c.Query("page")),
		PageSize:       atoiOrZero(c.Query("page_size")),
	}

	if raw := c.Query("bucket"); raw != "" {
		bucket, ok := models.ParseStatusBucket(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_BUCKET",
				"bucket must be one of waiting, in_progress, done", nil)
			return
		}
		q.Bucket = bucket
	}

	result, err := jc.jobs.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err, "list jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    newJobViews(jc.jobs, result.Jobs),
		"meta": gin.H{
			"total":          result.Total,
			"page":           result.Page,
			"page_size":      result.PageSize,
			"status_options": result.StatusOptions,
		},
	})
}

// Stream handles GET /api/v1/jobs/stream, pushing job changes as server-sent events
func (jc *JobController) Stream(c *gin.Context) {
	feed := jc.jobs.Feed()
	if feed == nil {
		respondError(c, http.StatusServiceUnavailable, "STREAM_UNAVAILABLE", "Live updates are not enabled", nil)
		return
	}

	ctx := c.Request.Context()
	events := feed.Subscribe(ctx)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"subscribers": feed.Subscribers()})
	c.Writer.Flush()

	ticker := time.NewTicker(jc.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			payload := gin.H{"type": evt.Type, "job_id": evt.JobID, "at": evt.At}
			if evt.Job != nil {
				payload["job"] = newJobView(jc.jobs, evt.Job)
			}
			c.SSEvent("job", payload)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}

// Create handles POST /api/v1/jobs
func (jc *JobController) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
		return
	}

	job, err := jc.jobs.Create(c.Request.Context(), services.JobInput{
		Name:          req.Name,
		Plate:         req.Plate,
		Code:          req.Code,
		ContactNumber: req.ContactNumber,
		Status:        req.Status,
		Detail:        req.Detail,
		Progress:      req.Progress,
	})
	if err != nil {
		respondServiceError(c, err, "create job")
		return
	}

	respondData(c, http.StatusCreated, newJobView(jc.jobs, job))
}

// Get handles GET /api/v1/jobs/:id
func (jc *JobController) Get(c *gin.Context) {
	job, err := jc.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "load job")
		return
	}

	respondData(c, http.StatusOK, newJobView(jc.jobs, job))
}

// Update handles PATCH /api/v1/jobs/:id
func (jc *JobController) Update(c *gin.Context) {
	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
		return
	}

	patch, err := req.patch()
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid progress value", err.Error())
		return
	}

	job, err := jc.jobs.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondServiceError(c, err, "update job")
		return
	}

	respondData(c, http.StatusOK, newJobView(jc.jobs, job))
}

// Delete handles DELETE /api/v1/jobs/:id
func (jc *JobController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := jc.jobs.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete job")
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// SetPhoto handles POST /api/v1/jobs/:id/photos/:slot with a multipart "image" field
func (jc *JobController) SetPhoto(c *gin.Context) {
	slot, ok := models.ParsePhotoSlot(c.Param("slot"))
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_SLOT",
			"slot must be one of before, process, after", nil)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required", nil)
		return
	}

	job, err := jc.jobs.SetPhoto(c.Request.Context(), c.Param("id"), slot, fileHeader)
	if err != nil {
		respondServiceError(c, err, "save photo")
		return
	}

	respondData(c, http.StatusOK, newJobView(jc.jobs, job))
}

// ClearPhoto handles DELETE /api/v1/jobs/:id/photos/:slot
func (jc *JobController) ClearPhoto(c *gin.Context) {
	slot, ok := models.ParsePhotoSlot(c.Param("slot"))
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_SLOT",
			"slot must be one of before, process, after", nil)
		return
	}

	job, err := jc.jobs.ClearPhoto(c.Request.Context(), c.Param("id"), slot)
	if err != nil {
		respondServiceError(c, err, "remove photo")
		return
	}

	respondData(c, http.StatusOK, newJobView(jc.jobs, job))
}

// ContactLink handles GET /api/v1/jobs/:id/contact-link
func (jc *JobController) ContactLink(c *gin.Context) {
	link, err := jc.jobs.ContactLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "build contact link")
		return
	}

	respondData(c, http.StatusOK, gin.H{"url": link})
}

// GenerateCode handles GET /api/v1/jobs/code
func (jc *JobController) GenerateCode(c *gin.Context) {
	code, err := jc.jobs.GenerateUniqueCode(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "generate code")
		return
	}

	respondData(c, http.StatusOK, gin.H{"code": code})
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
