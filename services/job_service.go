package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds GenerateUniqueCode; 36^6 codes make a miss this long practically impossible
const maxCodeAttempts = 10

// JobServiceOptions carries the settings the job service derives links from
type JobServiceOptions struct {
	LookupBaseURL  string
	ShopName       string
	MaxUploadBytes int64
}

// JobService is the job record lifecycle: validation, persistence,
// photos, lookup and the derived customer links
type JobService struct {
	store RecordStore
	media MediaHost
	feed  *ChangeFeed
	opts  JobServiceOptions

	generateCode func() (string, error)
}

// NewJobService wires the service. feed may be nil when nobody listens for changes.
func NewJobService(store RecordStore, media MediaHost, feed *ChangeFeed, opts JobServiceOptions) *JobService {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = utils.DefaultMaxFileSize
	}
	return &JobService{
		store:        store,
		media:        media,
		feed:         feed,
		opts:         opts,
		generateCode: utils.GenerateCode,
	}
}

// Feed returns the change feed, or nil
func (s *JobService) Feed() *ChangeFeed {
	return s.feed
}

// LookupLink is the public page for a code
func (s *JobService) LookupLink(code string) string {
	return utils.BuildLookupLink(s.opts.LookupBaseURL, code)
}

// Create validates the intake input and stores the new record
func (s *JobService) Create(ctx context.Context, in JobInput) (*models.JobRecord, error) {
	job, err := NormalizeJobInput(in)
	if err != nil {
		return nil, err
	}

	s.warnOnSharedCode(ctx, job.Code)

	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("job created",
		zap.String("job_id", job.ID),
		zap.String("code", job.Code))
	s.publish(JobCreated, job)
	return job, nil
}

// Get returns one record by id
func (s *JobService) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	return s.store.GetByID(ctx, id)
}

// Update applies a partial edit. Photo slots are never part of a patch.
func (s *JobService) Update(ctx context.Context, id string, patch JobPatch) (*models.JobRecord, error) {
	fields, err := NormalizeJobPatch(patch)
	if err != nil {
		return nil, err
	}

	if code, ok := fields["code"].(string); ok {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Code != code {
			s.warnOnSharedCode(ctx, code)
		}
	}

	job, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("job updated",
		zap.String("job_id", job.ID),
		zap.Int("fields", len(fields)))
	s.publish(JobUpdated, job)
	return job, nil
}

// SetPhoto uploads a photo and writes it to one slot only.
// The previous photo in that slot is deleted from the media host on a best-effort basis.
func (s *JobService) SetPhoto(ctx context.Context, id string, slot models.PhotoSlot, fileHeader *multipart.FileHeader) (*models.JobRecord, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateImageFile(fileHeader, s.opts.MaxUploadBytes); err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, fileHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	job, err := s.store.UpdateFields(ctx, id, map[string]any{slot.Column(): url})
	if err != nil {
		s.deleteMedia(ctx, url)
		return nil, err
	}

	if previous := current.Photo(slot); previous != "" && previous != url {
		s.deleteMedia(ctx, previous)
	}

	logger.WithContext(ctx).Info("job photo set",
		zap.String("job_id", id),
		zap.String("slot", string(slot)))
	s.publish(JobUpdated, job)
	return job, nil
}

// ClearPhoto empties one slot
func (s *JobService) ClearPhoto(ctx context.Context, id string, slot models.PhotoSlot) (*models.JobRecord, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := current.Photo(slot)
	if previous == "" {
		return current, nil
	}

	job, err := s.store.UpdateFields(ctx, id, map[string]any{slot.Column(): ""})
	if err != nil {
		return nil, err
	}
	s.deleteMedia(ctx, previous)

	logger.WithContext(ctx).Info("job photo removed",
		zap.String("job_id", id),
		zap.String("slot", string(slot)))
	s.publish(JobUpdated, job)
	return job, nil
}

// Delete removes a record. Its photos are left on the media host.
func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	logger.WithContext(ctx).Info("job deleted", zap.String("job_id", id))
	s.publish(JobDeleted, &models.JobRecord{ID: id})
	return nil
}

// Lookup finds the record a customer asked for. A missing record is reported
// through found=false, never as an error.
func (s *JobService) Lookup(ctx context.Context, code string) (job *models.JobRecord, found bool, err error) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return nil, false, nil
	}

	job, err = s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return job, true, nil
}

// List returns one page of the staff job list
func (s *JobService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	return s.store.List(ctx, q.Normalize())
}

// GenerateUniqueCode returns a fresh lookup code not used by any record
func (s *JobService) GenerateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return "", err
		}
		n, err := s.store.CountByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused code after %d attempts", maxCodeAttempts)
}

// ContactLink builds the WhatsApp link that sends the customer a progress update
func (s *JobService) ContactLink(ctx context.Context, id string) (string, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	return utils.BuildContactLink(job.ContactNumber, utils.ContactMessage{
		ShopName:   s.opts.ShopName,
		Vehicle:    job.Name,
		Plate:      job.Plate,
		Code:       job.Code,
		Status:     job.Status,
		Progress:   job.Progress,
		Detail:     job.Detail,
		LookupLink: s.LookupLink(job.Code),
	})
}

// warnOnSharedCode logs when a code is reused; lookups then see the oldest record
func (s *JobService) warnOnSharedCode(ctx context.Context, code string) {
	n, err := s.store.CountByCode(ctx, code)
	if err != nil {
		logger.WithContext(ctx).Warn("could not check code reuse", zap.String("code", code), zap.Error(err))
		return
	}
	if n > 0 {
		logger.WithContext(ctx).Warn("code already in use, lookups return the oldest record",
			zap.String("code", code),
			zap.Int64("existing", n))
	}
}

func (s *JobService) deleteMedia(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		logger.WithContext(ctx).Warn("failed to delete photo", zap.String("url", url), zap.Error(err))
	}
}

func (s *JobService) publish(t JobEventType, job *models.JobRecord) {
	if s.feed == nil {
		return
	}
	evt := JobEvent{Type: t, JobID: job.ID}
	if t != JobDeleted {
		copied := *job
		evt.Job = &copied
	}
	s.feed.Publish(evt)
}
