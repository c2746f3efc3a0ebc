package form

import (
	"context"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

type Repository interface {
	// Create persists a new form. ErrAlreadyExists if the owner already has
	// a form for the job.
	Create(ctx context.Context, form *ApplicationForm) error

	// GetByID retrieves a form, ErrNotFound if absent
	GetByID(ctx context.Context, id kernel.ApplicationFormID) (*ApplicationForm, error)

	// GetByOwnerAndJob retrieves the owner's form for a job, ErrNotFound if absent
	GetByOwnerAndJob(ctx context.Context, ownerID kernel.UserID, jobID kernel.JobID) (*ApplicationForm, error)

	// ListByJob returns every form attached to a job regardless of owner, newest first
	ListByJob(ctx context.Context, jobID kernel.JobID) ([]ApplicationForm, error)

	// ListByOwner pages through an owner's forms, newest first
	ListByOwner(ctx context.Context, ownerID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[ApplicationForm], error)

	// ListAllByOwner returns every form of an owner
	ListAllByOwner(ctx context.Context, ownerID kernel.UserID) ([]ApplicationForm, error)

	// Update writes the editable fields if the stored version equals
	// form.Version, then refreshes form.Version and form.SubmissionCount from
	// the store. submission_count is never written.
	Update(ctx context.Context, form *ApplicationForm) error

	// Delete removes a form, ErrNotFound if absent
	Delete(ctx context.Context, id kernel.ApplicationFormID) error

	// IncrementSubmissionCount adds exactly one submission in a single store
	// operation and returns the new count. ErrNotFound if absent.
	IncrementSubmissionCount(ctx context.Context, id kernel.ApplicationFormID) (int64, error)
}
