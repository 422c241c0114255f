package models

import (
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultStatus is the intake phrase given to new jobs with no status text
const DefaultStatus = "Motor masuk"

// PhotoSlot names one of the three independent photo fields of a job
type PhotoSlot string

const (
	PhotoBefore  PhotoSlot = "before"
	PhotoProcess PhotoSlot = "process"
	PhotoAfter   PhotoSlot = "after"
)

// PhotoSlots lists the slots in display order
var PhotoSlots = []PhotoSlot{PhotoBefore, PhotoProcess, PhotoAfter}

// ParsePhotoSlot returns the slot for a path value such as "before"
func ParsePhotoSlot(raw string) (PhotoSlot, bool) {
	for _, s := range PhotoSlots {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Column returns the database column backing the slot
func (s PhotoSlot) Column() string {
	return "photo_" + string(s)
}

// JobRecord is one tracked repair intake for a single vehicle
type JobRecord struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Plate         string     `gorm:"not null" json:"plate"`
	Code          string     `gorm:"not null;index" json:"code"` // public lookup key, not unique
	ContactNumber string     `gorm:"not null" json:"contact_number"`
	Status        string     `gorm:"not null;default:'Motor masuk'" json:"status"`
	Detail        string     `gorm:"type:text" json:"detail"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	PhotoBefore   string     `json:"photo_before"`
	PhotoProcess  string     `json:"photo_process"`
	PhotoAfter    string     `json:"photo_after"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"` // nil until the first edit
}

// TableName specifies the table name for the JobRecord model
func (JobRecord) TableName() string {
	return "job_records"
}

// BeforeCreate assigns the opaque identifier
func (j *JobRecord) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// AfterFind keeps rows written outside this service inside the progress range
func (j *JobRecord) AfterFind(tx *gorm.DB) error {
	j.Progress = utils.ClampProgress(j.Progress)
	return nil
}

// StatusBucket classifies the free-text status for display and filtering
func (j JobRecord) StatusBucket() StatusBucket {
	return ClassifyStatus(j.Status)
}

// LastActivityAt is the last update time, or the creation time for records never edited
func (j JobRecord) LastActivityAt() time.Time {
	if j.UpdatedAt != nil && !j.UpdatedAt.IsZero() {
		return *j.UpdatedAt
	}
	return j.CreatedAt
}

// Photo returns the URL stored in a slot; empty means absent
func (j JobRecord) Photo(slot PhotoSlot) string {
	switch slot {
	case PhotoBefore:
		return j.PhotoBefore
	case PhotoProcess:
		return j.PhotoProcess
	case PhotoAfter:
		return j.PhotoAfter
	}
	return ""
}

// SetPhoto writes a slot on the in-memory record
func (j *JobRecord) SetPhoto(slot PhotoSlot, url string) {
	switch slot {
	case PhotoBefore:
		j.PhotoBefore = url
	case PhotoProcess:
		j.PhotoProcess = url
	case PhotoAfter:
		j.PhotoAfter = url
	}
}

// HasPhotos reports whether any slot holds a photo
func (j JobRecord) HasPhotos() bool {
	return j.PhotoBefore != "" || j.PhotoProcess != "" || j.PhotoAfter != ""
}
