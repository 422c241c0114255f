package services

import (
	"fmt"
	"strings"

	"github.com/bagusrestoration/bengkel-progress-api/models"
	"github.com/bagusrestoration/bengkel-progress-api/utils"
)

// ValidationError identifies the first field that failed validation
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    "MISSING_FIELD",
		Message: fmt.Sprintf("%s is required", field),
	}
}

// JobInput is a candidate job record exactly as a staff member typed it
type JobInput struct {
	Name          string
	Plate         string
	Code          string
	ContactNumber string
	Status        string
	Detail        string
	Progress      any
}

// JobPatch is a partial edit. Nil fields are left untouched.
type JobPatch struct {
	Name          *string
	Plate         *string
	Code          *string
	ContactNumber *string
	Status        *string
	Detail        *string
	Progress      any
	ProgressSet   bool
}

// IsEmpty reports whether the patch changes nothing
func (p JobPatch) IsEmpty() bool {
	return p.Name == nil && p.Plate == nil && p.Code == nil && p.ContactNumber == nil &&
		p.Status == nil && p.Detail == nil && !p.ProgressSet
}

// NormalizeJobInput is the only path from raw intake input to a storable record.
// Required fields are checked in a fixed order and the first missing one is reported.
func NormalizeJobInput(in JobInput) (*models.JobRecord, error) {
	job := &models.JobRecord{
		Name:          strings.TrimSpace(in.Name),
		Plate:         utils.NormalizePlate(in.Plate),
		Code:          utils.NormalizeCode(in.Code),
		ContactNumber: utils.NormalizeContactNumber(in.ContactNumber),
		Status:        normalizeStatus(in.Status),
		Detail:        strings.TrimSpace(in.Detail),
		Progress:      utils.CoerceProgress(in.Progress),
	}

	switch {
	case job.Name == "":
		return nil, missingField("name")
	case job.Plate == "":
		return nil, missingField("plate")
	case job.Code == "":
		return nil, missingField("code")
	case job.ContactNumber == "":
		return nil, missingField("contact_number")
	}

	return job, nil
}

// NormalizeJobPatch turns a partial edit into the column set to write.
// Required fields that are present must still be non-empty.
func NormalizeJobPatch(p JobPatch) (map[string]any, error) {
	if p.IsEmpty() {
		return nil, &ValidationError{Code: "EMPTY_UPDATE", Message: "No fields to update"}
	}

	fields := make(map[string]any)

	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		if v == "" {
			return nil, missingField("name")
		}
		fields["name"] = v
	}
	if p.Plate != nil {
		v := utils.NormalizePlate(*p.Plate)
		if v == "" {
			return nil, missingField("plate")
		}
		fields["plate"] = v
	}
	if p.Code != nil {
		v := utils.NormalizeCode(*p.Code)
		if v == "" {
			return nil, missingField("code")
		}
		fields["code"] = v
	}
	if p.ContactNumber != nil {
		v := utils.NormalizeContactNumber(*p.ContactNumber)
		if v == "" {
			return nil, missingField("contact_number")
		}
		fields["contact_number"] = v
	}
	if p.Status != nil {
		fields["status"] = normalizeStatus(*p.Status)
	}
	if p.Detail != nil {
		fields["detail"] = strings.TrimSpace(*p.Detail)
	}
	if p.ProgressSet {
		fields["progress"] = utils.CoerceProgress(p.Progress)
	}

	return fields, nil
}

func normalizeStatus(status string) string {
	if s := strings.TrimSpace(status); s != "" {
		return s
	}
	return models.DefaultStatus
}
