package form

import (
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

// CreateFormRequest declares a job's intake form. Omitted upload and
// visibility settings take the package defaults.
type CreateFormRequest struct {
	JobID              kernel.JobID      `json:"job_id" validate:"required"`
	Fields             FormFields        `json:"fields" validate:"dive"`
	RequiresResume     *bool             `json:"requires_resume,omitempty"`
	AllowMultipleFiles *bool             `json:"allow_multiple_files,omitempty"`
	MaxFileSizeMB      *int              `json:"max_file_size_mb,omitempty"`
	AllowedFileTypes   []string          `json:"allowed_file_types,omitempty" validate:"omitempty,dive,required,max=10"`
	IsActive           *bool             `json:"is_active,omitempty"`
	IsPublic           *bool             `json:"is_public,omitempty"`
	ExpiresAt          *string           `json:"expires_at,omitempty"`
	Settings           kernel.Attributes `json:"settings,omitempty"`
}

// UpdateFormRequest patches a form. An empty expires_at string clears the expiry.
type UpdateFormRequest struct {
	Fields             FormFields        `json:"fields,omitempty" validate:"omitempty,dive"`
	RequiresResume     *bool             `json:"requires_resume,omitempty"`
	AllowMultipleFiles *bool             `json:"allow_multiple_files,omitempty"`
	MaxFileSizeMB      *int              `json:"max_file_size_mb,omitempty"`
	AllowedFileTypes   []string          `json:"allowed_file_types,omitempty" validate:"omitempty,dive,required,max=10"`
	IsActive           *bool             `json:"is_active,omitempty"`
	IsPublic           *bool             `json:"is_public,omitempty"`
	ExpiresAt          *string           `json:"expires_at,omitempty"`
	Settings           kernel.Attributes `json:"settings,omitempty"`
}

// PublicFormResponse is what unauthenticated applicants see. Owner and
// submission figures are left out.
type PublicFormResponse struct {
	ID                 kernel.ApplicationFormID `json:"id"`
	JobID              kernel.JobID             `json:"job_id"`
	Fields             FormFields               `json:"fields"`
	RequiresResume     bool                     `json:"requires_resume"`
	AllowMultipleFiles bool                     `json:"allow_multiple_files"`
	MaxFileSizeMB      int                      `json:"max_file_size_mb"`
	AllowedFileTypes   []kernel.FileType        `json:"allowed_file_types"`
	ExpiresAt          *time.Time               `json:"expires_at,omitempty"`
}

// ToPublic strips owner-only data from f
func (f *ApplicationForm) ToPublic() PublicFormResponse {
	return PublicFormResponse{
		ID:                 f.ID,
		JobID:              f.JobID,
		Fields:             f.Fields,
		RequiresResume:     f.RequiresResume,
		AllowMultipleFiles: f.AllowMultipleFiles,
		MaxFileSizeMB:      f.MaxFileSizeMB,
		AllowedFileTypes:   f.AllowedFileTypes,
		ExpiresAt:          f.ExpiresAt,
	}
}

// SubmissionReceipt acknowledges a counted public submission
type SubmissionReceipt struct {
	FormID     kernel.ApplicationFormID `json:"form_id"`
	JobID      kernel.JobID             `json:"job_id"`
	AcceptedAt time.Time                `json:"accepted_at"`
}

// FormByJobResponse wraps the owner lookup, which may find nothing
type FormByJobResponse struct {
	Form *ApplicationForm `json:"form"`
}

type PaginatedFormsResponse = kernel.Paginated[ApplicationForm]
