package form

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

// Upload policy defaults for new forms
const (
	DefaultMaxFileSizeMB = 10
	MaxFileSizeMBLimit   = 100
)

// DefaultAllowedFileTypes is used when a form declares no file types
var DefaultAllowedFileTypes = []kernel.FileType{"pdf", "doc", "docx"}

// FieldType names the kind of input an applicant fills in
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
	FieldTypeURL      FieldType = "url"
)

// FormField describes one piece of applicant data. Stored and returned as-is.
type FormField struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Label       string            `json:"label" validate:"max=200"`
	Type        FieldType         `json:"type" validate:"required"`
	Required    bool              `json:"required"`
	Placeholder string            `json:"placeholder,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Config      kernel.Attributes `json:"config,omitempty"`
}

// FormFields is the ordered field schema of a form, persisted as jsonb
type FormFields []FormField

// Value implements driver.Valuer
func (f FormFields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner
func (f *FormFields) Scan(src any) error {
	var data []byte
	switch t := src.(type) {
	case nil:
		*f = FormFields{}
		return nil
	case []byte:
		data = t
	case string:
		data = []byte(t)
	default:
		return fmt.Errorf("form: cannot scan %T into FormFields", src)
	}

	out := FormFields{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("form: decode fields: %w", err)
		}
	}
	*f = out
	return nil
}

// ApplicationForm is the public intake form of one job for one owner
type ApplicationForm struct {
	ID                 kernel.ApplicationFormID `db:"id" json:"id"`
	OwnerID            kernel.UserID            `db:"owner_id" json:"owner_id"`
	JobID              kernel.JobID             `db:"job_id" json:"job_id"`
	Fields             FormFields               `db:"fields" json:"fields"`
	RequiresResume     bool                     `db:"requires_resume" json:"requires_resume"`
	AllowMultipleFiles bool                     `db:"allow_multiple_files" json:"allow_multiple_files"`
	MaxFileSizeMB      int                      `db:"max_file_size_mb" json:"max_file_size_mb"`
	AllowedFileTypes   []kernel.FileType        `db:"allowed_file_types" json:"allowed_file_types"`
	IsActive           bool                     `db:"is_active" json:"is_active"`
	IsPublic           bool                     `db:"is_public" json:"is_public"`
	ExpiresAt          *time.Time               `db:"expires_at" json:"expires_at,omitempty"`
	SubmissionCount    int64                    `db:"submission_count" json:"submission_count"`
	Settings           kernel.Attributes        `db:"settings" json:"settings"`
	Version            int64                    `db:"version" json:"version"`
	CreatedAt          time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsExpired reports whether the form has an expiry at or before now
func (f *ApplicationForm) IsExpired(now time.Time) bool {
	return f.ExpiresAt != nil && !f.ExpiresAt.After(now)
}

// IsCurrentlyActive is the active flag combined with the expiry check
func (f *ApplicationForm) IsCurrentlyActive(now time.Time) bool {
	return f.IsActive && !f.IsExpired(now)
}

// IsPubliclyVisible reports whether unauthenticated applicants may see the form
func (f *ApplicationForm) IsPubliclyVisible(now time.Time) bool {
	return f.IsPublic && f.IsCurrentlyActive(now)
}

// AcceptsFileType reports whether uploads of type t are allowed
func (f *ApplicationForm) AcceptsFileType(t string) bool {
	return slices.Contains(f.AllowedFileTypes, kernel.NormalizeFileType(t))
}

// NewFormParams carries the resolved values for a new form
type NewFormParams struct {
	ID                 kernel.ApplicationFormID
	OwnerID            kernel.UserID
	JobID              kernel.JobID
	Fields             FormFields
	RequiresResume     *bool
	AllowMultipleFiles *bool
	MaxFileSizeMB      *int
	AllowedFileTypes   []string
	IsActive           *bool
	IsPublic           *bool
	ExpiresAt          *time.Time
	Settings           kernel.Attributes
	Now                time.Time
}

// NewApplicationForm applies defaults and builds a form with no submissions
func NewApplicationForm(p NewFormParams) (*ApplicationForm, error) {
	if p.OwnerID.IsEmpty() {
		return nil, ErrValidationFailed().WithDetail("owner_id", "required")
	}
	if p.JobID.IsEmpty() {
		return nil, ErrValidationFailed().WithDetail("job_id", "required")
	}

	f := &ApplicationForm{
		ID:                 p.ID,
		OwnerID:            p.OwnerID,
		JobID:              p.JobID,
		Fields:             p.Fields,
		RequiresResume:     boolOr(p.RequiresResume, true),
		AllowMultipleFiles: boolOr(p.AllowMultipleFiles, false),
		MaxFileSizeMB:      DefaultMaxFileSizeMB,
		AllowedFileTypes:   slices.Clone(DefaultAllowedFileTypes),
		IsActive:           boolOr(p.IsActive, true),
		IsPublic:           boolOr(p.IsPublic, true),
		ExpiresAt:          p.ExpiresAt,
		SubmissionCount:    0,
		Settings:           p.Settings,
		Version:            1,
		CreatedAt:          p.Now,
		UpdatedAt:          p.Now,
	}
	if f.Fields == nil {
		f.Fields = FormFields{}
	}
	if f.Settings == nil {
		f.Settings = kernel.Attributes{}
	}
	if err := f.setMaxFileSize(p.MaxFileSizeMB); err != nil {
		return nil, err
	}
	if p.AllowedFileTypes != nil {
		f.AllowedFileTypes = normalizeFileTypes(p.AllowedFileTypes)
	}
	return f, nil
}

// Patch holds the owner-editable fields; nil leaves a field unchanged.
// ClearExpiry removes the expiry and wins over ExpiresAt.
type Patch struct {
	Fields             FormFields
	RequiresResume     *bool
	AllowMultipleFiles *bool
	MaxFileSizeMB      *int
	AllowedFileTypes   []string
	IsActive           *bool
	IsPublic           *bool
	ExpiresAt          *time.Time
	ClearExpiry        bool
	Settings           kernel.Attributes
}

// Apply edits the form. SubmissionCount is never touched here.
func (f *ApplicationForm) Apply(p Patch, now time.Time) error {
	if err := f.setMaxFileSize(p.MaxFileSizeMB); err != nil {
		return err
	}
	if p.Fields != nil {
		f.Fields = p.Fields
	}
	if p.RequiresResume != nil {
		f.RequiresResume = *p.RequiresResume
	}
	if p.AllowMultipleFiles != nil {
		f.AllowMultipleFiles = *p.AllowMultipleFiles
	}
	if p.AllowedFileTypes != nil {
		f.AllowedFileTypes = normalizeFileTypes(p.AllowedFileTypes)
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if p.IsPublic != nil {
		f.IsPublic = *p.IsPublic
	}
	switch {
	case p.ClearExpiry:
		f.ExpiresAt = nil
	case p.ExpiresAt != nil:
		f.ExpiresAt = p.ExpiresAt
	}
	if p.Settings != nil {
		f.Settings = p.Settings
	}
	f.UpdatedAt = now
	return nil
}

func (f *ApplicationForm) setMaxFileSize(mb *int) error {
	if mb == nil {
		return nil
	}
	if *mb < 1 || *mb > MaxFileSizeMBLimit {
		return ErrValidationFailed().
			WithDetail("max_file_size_mb", *mb).
			WithDetail("allowed_range", fmt.Sprintf("1-%d", MaxFileSizeMBLimit))
	}
	f.MaxFileSizeMB = *mb
	return nil
}

// ParseExpiry reads an RFC 3339 timestamp. nil and "" both mean no expiry.
func ParseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, ErrInvalidExpiry().WithDetail("expires_at", *raw).WithCause(err)
	}
	t = t.UTC()
	return &t, nil
}

func normalizeFileTypes(in []string) []kernel.FileType {
	out := make([]kernel.FileType, 0, len(in))
	for _, raw := range in {
		t := kernel.NormalizeFileType(raw)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
