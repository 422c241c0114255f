package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/models"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (Page-1)*PageSize inside int
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ListQuery filters and pages the staff job list
type ListQuery struct {
	Search         string              // case-insensitive substring over name, plate, code, contact and status
	Status         string              // exact status text
	Bucket         models.StatusBucket // derived bucket, empty for all
	SortByActivity bool                // last activity instead of creation time
	Page           int
	PageSize       int
}

// Normalize applies paging defaults and bounds
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.TrimSpace(q.Status)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// ListResult is one page of jobs plus the distinct statuses available for filtering
type ListResult struct {
	Jobs          []models.JobRecord `json:"jobs"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
	StatusOptions []string           `json:"status_options"`
}

// RecordStore persists job records
type RecordStore interface {
	Create(ctx context.Context, job *models.JobRecord) error
	GetByID(ctx context.Context, id string) (*models.JobRecord, error)
	// FindByCode returns the oldest record with the code, or ErrJobNotFound
	FindByCode(ctx context.Context, code string) (*models.JobRecord, error)
	CountByCode(ctx context.Context, code string) (int64, error)
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	// UpdateFields writes only the given columns and stamps updated_at
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.JobRecord, error)
	Delete(ctx context.Context, id string) error
}

// GormRecordStore is the RecordStore backed by the application database
type GormRecordStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRecordStore creates a store over db
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	now := time.Now
	if db != nil && db.Config != nil && db.NowFunc != nil {
		now = db.NowFunc
	}
	return &GormRecordStore{db: db, now: now}
}

func (s *GormRecordStore) Create(ctx context.Context, job *models.JobRecord) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}
	return nil
}

func (s *GormRecordStore) GetByID(ctx context.Context, id string) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to fetch job record: %w", err)
	}
	return &job, nil
}

func (s *GormRecordStore) FindByCode(ctx context.Context, code string) (*models.JobRecord, error) {
	var job models.JobRecord
	err := s.db.WithContext(ctx).
		Where("code = ?", code).
		Order("created_at ASC").
		Order("id ASC").
		Take(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to look up job record: %w", err)
	}
	return &job, nil
}

func (s *GormRecordStore) CountByCode(ctx context.Context, code string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.JobRecord{}).Where("code = ?", code).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count job records: %w", err)
	}
	return n, nil
}

func (s *GormRecordStore) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q = q.Normalize()

	query := s.db.WithContext(ctx).Model(&models.JobRecord{})
	if q.Search != "" {
		// Search is a literal substring, so LIKE wildcards in it are escaped
		like := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(plate) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\' OR `+
				`LOWER(contact_number) LIKE ? ESCAPE '\' OR LOWER(status) LIKE ? ESCAPE '\'`,
			like, like, like, like, like,
		)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	query = query.Session(&gorm.Session{})

	ordered := query.Order("created_at DESC")
	if q.SortByActivity {
		ordered = query.Order("COALESCE(updated_at, created_at) DESC")
	}
	ordered = ordered.Order("id DESC")

	result := &ListResult{Page: q.Page, PageSize: q.PageSize}

	if q.Bucket == "" {
		if err := query.Count(&result.Total).Error; err != nil {
			return nil, fmt.Errorf("failed to count job records: %w", err)
		}
		if err := ordered.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&result.Jobs).Error; err != nil {
			return nil, fmt.Errorf("failed to list job records: %w", err)
		}
	} else {
		// buckets are derived from free text, so they are filtered after loading
		var all []models.JobRecord
		if err := ordered.Find(&all).Error; err != nil {
			return nil, fmt.Errorf("failed to list job records: %w", err)
		}
		matched := make([]models.JobRecord, 0, len(all))
		for _, job := range all {
			if job.StatusBucket() == q.Bucket {
				matched = append(matched, job)
			}
		}
		result.Total = int64(len(matched))
		start := (q.Page - 1) * q.PageSize
		if start < 0 {
			start = 0
		}
		if start > len(matched) {
			start = len(matched)
		}
		end := start + q.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		result.Jobs = matched[start:end]
	}
	if result.Jobs == nil {
		result.Jobs = []models.JobRecord{}
	}

	options, err := s.statusOptions(ctx)
	if err != nil {
		return nil, err
	}
	result.StatusOptions = options

	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *GormRecordStore) statusOptions(ctx context.Context) ([]string, error) {
	var raw []string
	if err := s.db.WithContext(ctx).Model(&models.JobRecord{}).Distinct().Pluck("status", &raw).Error; err != nil {
		return nil, fmt.Errorf("failed to load status options: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	options := make([]string, 0, len(raw))
	for _, st := range raw {
		st = strings.TrimSpace(st)
		if st == "" {
			continue
		}
		if _, ok := seen[st]; ok {
			continue
		}
		seen[st] = struct{}{}
		options = append(options, st)
	}
	sort.Strings(options)
	return options, nil
}

func (s *GormRecordStore) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.JobRecord, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = s.now()

	res := s.db.WithContext(ctx).Model(&models.JobRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update job record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrJobNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *GormRecordStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.JobRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete job record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}
