package formsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/Abraxas-365/hirekit/pkg/telemetry"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/Abraxas-365/hirekit/recruitment/ownership"
	"github.com/google/uuid"
)

// FormService is the application form registry
type FormService struct {
	repo form.Repository
	now  func() time.Time
}

// Option customises a FormService
type Option func(*FormService)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *FormService) { s.now = now }
}

// NewFormService creates a new instance of the form service
func NewFormService(repo form.Repository, opts ...Option) *FormService {
	s := &FormService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateForm registers the owner's form for a job. An owner may hold at most
// one form per job.
func (s *FormService) CreateForm(ctx context.Context, ownerID kernel.UserID, req form.CreateFormRequest) (*form.ApplicationForm, error) {
	expiresAt, err := form.ParseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	newForm, err := form.NewApplicationForm(form.NewFormParams{
		ID:                 kernel.NewApplicationFormID(uuid.NewString()),
		OwnerID:            ownerID,
		JobID:              req.JobID,
		Fields:             req.Fields,
		RequiresResume:     req.RequiresResume,
		AllowMultipleFiles: req.AllowMultipleFiles,
		MaxFileSizeMB:      req.MaxFileSizeMB,
		AllowedFileTypes:   req.AllowedFileTypes,
		IsActive:           req.IsActive,
		IsPublic:           req.IsPublic,
		ExpiresAt:          expiresAt,
		Settings:           req.Settings,
		Now:                s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, newForm); err != nil {
		if errx.IsCode(err, form.CodeAlreadyExists) {
			return nil, form.ErrAlreadyExists().
				WithDetail("job_id", req.JobID.String())
		}
		return nil, errx.Wrap(err, "failed to create application form", errx.TypeInternal)
	}

	logx.With("form_id", newForm.ID, "job_id", newForm.JobID, "owner_id", ownerID).
		Info("application form created")
	return newForm, nil
}

// GetForm returns a form to its owner
func (s *FormService) GetForm(ctx context.Context, id kernel.ApplicationFormID, requesterID kernel.UserID) (*form.ApplicationForm, error) {
	return s.loadOwned(ctx, id, requesterID)
}

// GetFormByJob returns the requester's form for a job, or nil when there is none
func (s *FormService) GetFormByJob(ctx context.Context, jobID kernel.JobID, requesterID kernel.UserID) (*form.ApplicationForm, error) {
	f, err := s.repo.GetByOwnerAndJob(ctx, requesterID, jobID)
	if err != nil {
		if errx.IsCode(err, form.CodeNotFound) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to load application form", errx.TypeInternal)
	}
	return f, nil
}

// GetPublicForm resolves the form applicants see for a job. Missing, private,
// inactive and expired forms all answer ErrNotFound without details.
func (s *FormService) GetPublicForm(ctx context.Context, jobID kernel.JobID) (*form.ApplicationForm, error) {
	forms, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to look up public form", errx.TypeInternal)
	}

	now := s.now()
	for i := range forms {
		if forms[i].IsPubliclyVisible(now) {
			return &forms[i], nil
		}
	}

	telemetry.PublicFormMisses.Inc()
	return nil, form.ErrNotFound()
}

// UpdateForm applies an owner's patch
func (s *FormService) UpdateForm(ctx context.Context, id kernel.ApplicationFormID, requesterID kernel.UserID, req form.UpdateFormRequest) (*form.ApplicationForm, error) {
	patch := form.Patch{
		Fields:             req.Fields,
		RequiresResume:     req.RequiresResume,
		AllowMultipleFiles: req.AllowMultipleFiles,
		MaxFileSizeMB:      req.MaxFileSizeMB,
		AllowedFileTypes:   req.AllowedFileTypes,
		IsActive:           req.IsActive,
		IsPublic:           req.IsPublic,
		Settings:           req.Settings,
	}
	if req.ExpiresAt != nil {
		expiresAt, err := form.ParseExpiry(req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		patch.ExpiresAt = expiresAt
		patch.ClearExpiry = expiresAt == nil
	}

	f, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(patch, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, f); err != nil {
		if errx.IsCode(err, form.CodeVersionConflict) {
			telemetry.VersionConflicts.WithLabelValues("application_form").Inc()
			logx.With("form_id", id, "version", f.Version).Warn("application form version conflict")
			return nil, err
		}
		return nil, errx.Wrap(err, "failed to update application form", errx.TypeInternal)
	}

	return f, nil
}

// DeleteForm removes a form on its owner's request
func (s *FormService) DeleteForm(ctx context.Context, id kernel.ApplicationFormID, requesterID kernel.UserID) error {
	if _, err := s.loadOwned(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete application form", errx.TypeInternal)
	}
	logx.With("form_id", id, "owner_id", requesterID).Info("application form deleted")
	return nil
}

// RecordSubmission counts one submission against a form. It needs no
// identity and relies on a single atomic increment in the store.
func (s *FormService) RecordSubmission(ctx context.Context, id kernel.ApplicationFormID) (int64, error) {
	count, err := s.repo.IncrementSubmissionCount(ctx, id)
	if err != nil {
		if errx.IsCode(err, form.CodeNotFound) {
			return 0, form.ErrNotFound()
		}
		return 0, errx.Wrap(err, "failed to record submission", errx.TypeInternal)
	}

	telemetry.FormSubmissions.Inc()
	logx.With("form_id", id, "count", count).Debug("submission recorded")
	return count, nil
}

// SubmitPublic records a submission for the job's publicly visible form.
// Hidden forms never count submissions.
func (s *FormService) SubmitPublic(ctx context.Context, jobID kernel.JobID) (*form.SubmissionReceipt, error) {
	f, err := s.GetPublicForm(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err := s.RecordSubmission(ctx, f.ID); err != nil {
		return nil, err
	}
	return &form.SubmissionReceipt{
		FormID:     f.ID,
		JobID:      f.JobID,
		AcceptedAt: s.now().UTC(),
	}, nil
}

// ListForms pages through the requester's forms
func (s *FormService) ListForms(ctx context.Context, ownerID kernel.UserID, pagination kernel.PaginationOptions) (*form.PaginatedFormsResponse, error) {
	page, err := s.repo.ListByOwner(ctx, ownerID, pagination.Normalize())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list application forms", errx.TypeInternal)
	}
	return page, nil
}

// GetStats rolls up the owner's forms as they are stored right now
func (s *FormService) GetStats(ctx context.Context, ownerID kernel.UserID) (*form.FormStats, error) {
	forms, err := s.repo.ListAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load application forms", errx.TypeInternal)
	}
	stats := form.ComputeStats(forms, s.now())
	return &stats, nil
}

func (s *FormService) loadOwned(ctx context.Context, id kernel.ApplicationFormID, requesterID kernel.UserID) (*form.ApplicationForm, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errx.IsCode(err, form.CodeNotFound) {
			return nil, form.ErrNotFound().WithDetail("form_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to load application form", errx.TypeInternal)
	}
	if err := ownership.Authorize(f.OwnerID, requesterID); err != nil {
		return nil, err
	}
	return f, nil
}
