package controllers

import (
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/bagusrestoration/bengkel-progress-api/services"
)

// PhotoView is one photo slot; Present is false when nothing was uploaded
type PhotoView struct {
	Slot    models.PhotoSlot `json:"slot"`
	URL     string           `json:"url"`
	Present bool             `json:"present"`
}

// JobView is a job record plus the values derived from it
type JobView struct {
	models.JobRecord
	StatusBucket   models.StatusBucket `json:"status_bucket"`
	LookupLink     string              `json:"lookup_link"`
	LastActivityAt time.Time           `json:"last_activity_at"`
	Photos         []PhotoView         `json:"photos"`
}

// PublicJobView is what a customer sees on the lookup page; the contact number stays private
type PublicJobView struct {
	Name           string              `json:"name"`
	Plate          string              `json:"plate"`
	Code           string              `json:"code"`
	Status         string              `json:"status"`
	StatusBucket   models.StatusBucket `json:"status_bucket"`
	Detail         string              `json:"detail"`
	Progress       int                 `json:"progress"`
	Photos         []PhotoView         `json:"photos"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      *time.Time          `json:"updated_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
}

func photoViews(job *models.JobRecord) []PhotoView {
	views := make([]PhotoView, 0, len(models.PhotoSlots))
	for _, slot := range models.PhotoSlots {
		url := job.Photo(slot)
		views = append(views, PhotoView{Slot: slot, URL: url, Present: url != ""})
	}
	return views
}

func newJobView(jobs *services.JobService, job *models.JobRecord) JobView {
	return JobView{
		JobRecord:      *job,
		StatusBucket:   job.StatusBucket(),
		LookupLink:     jobs.LookupLink(job.Code),
		LastActivityAt: job.LastActivityAt(),
		Photos:         photoViews(job),
	}
}

func newJobViews(jobs *services.JobService, records []models.JobRecord) []JobView {
	views := make([]JobView, 0, len(records))
	for i := range records {
		views = append(views, newJobView(jobs, &records[i]))
	}
	return views
}

func newPublicJobView(job *models.JobRecord) PublicJobView {
	return PublicJobView{
		Name:           job.Name,
		Plate:          job.Plate,
		Code:           job.Code,
		Status:         job.Status,
		StatusBucket:   job.StatusBucket(),
		Detail:         job.Detail,
		Progress:       job.Progress,
		Photos:         photoViews(job),
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
		LastActivityAt: job.LastActivityAt(),
	}
}
