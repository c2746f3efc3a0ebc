package pipelinesrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/Abraxas-365/hirekit/pkg/telemetry"
	"github.com/Abraxas-365/hirekit/recruitment/ownership"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
	"github.com/google/uuid"
)

// PipelineService runs the hiring process state machine for owners
type PipelineService struct {
	repo   pipeline.Repository
	policy pipeline.StagePolicy
	now    func() time.Time
}

// Option customises a PipelineService
type Option func(*PipelineService)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *PipelineService) { s.now = now }
}

// NewPipelineService creates a new instance of the pipeline service
func NewPipelineService(repo pipeline.Repository, policy pipeline.StagePolicy, opts ...Option) *PipelineService {
	if policy == "" {
		policy = pipeline.StagePolicyFree
	}
	s := &PipelineService{
		repo:   repo,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StagePolicy returns the policy applied by AdvanceStage
func (s *PipelineService) StagePolicy() pipeline.StagePolicy {
	return s.policy
}

// CreateProcess opens a new hiring process owned by ownerID. Several
// processes may exist for the same job.
func (s *PipelineService) CreateProcess(ctx context.Context, ownerID kernel.UserID, req pipeline.CreateHiringProcessRequest) (*pipeline.HiringProcess, error) {
	process, err := pipeline.NewHiringProcess(pipeline.NewProcessParams{
		ID:            kernel.NewHiringProcessID(uuid.NewString()),
		OwnerID:       ownerID,
		JobID:         req.JobID,
		Title:         req.Title,
		Description:   req.Description,
		Stages:        req.Stages,
		InitialStatus: req.InitialStatus,
		InitialStage:  req.InitialStage,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Criteria:      req.Criteria,
		Settings:      req.Settings,
		Now:           s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, process); err != nil {
		return nil, errx.Wrap(err, "failed to create hiring process", errx.TypeInternal)
	}

	logx.With("process_id", process.ID, "job_id", process.JobID, "owner_id", ownerID).
		Info("hiring process created")
	return process, nil
}

// GetProcess returns a process its owner asked for
func (s *PipelineService) GetProcess(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID) (*pipeline.HiringProcess, error) {
	return s.loadOwned(ctx, id, requesterID)
}

// ListProcesses pages through the requester's processes
func (s *PipelineService) ListProcesses(ctx context.Context, ownerID kernel.UserID, filter pipeline.ListFilter, pagination kernel.PaginationOptions) (*pipeline.PaginatedHiringProcessesResponse, error) {
	page, err := s.repo.ListByOwner(ctx, ownerID, filter, pagination.Normalize())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list hiring processes", errx.TypeInternal)
	}
	return page, nil
}

// AdvanceStage moves the process to a declared stage
func (s *PipelineService) AdvanceStage(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, target pipeline.Stage) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	from := process.CurrentStage
	if err := process.AdvanceStage(target, s.policy, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, process); err != nil {
		return nil, err
	}

	telemetry.StageTransitions.WithLabelValues(string(s.policy), string(process.ClassifyStageMove(from, target))).Inc()
	logx.With("process_id", id, "from", from, "to", target).Info("stage advanced")
	return process, nil
}

// UpdateStatus moves the process along the status DAG. Setting the current
// status again succeeds without writing.
func (s *PipelineService) UpdateStatus(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, status pipeline.Status) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	from := process.Status
	changed, err := process.UpdateStatus(status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		return process, nil
	}

	if err := s.save(ctx, process); err != nil {
		return nil, err
	}

	telemetry.StatusTransitions.WithLabelValues(string(from), string(status)).Inc()
	logx.With("process_id", id, "from", from, "to", status).Info("status updated")
	return process, nil
}

// AllowedTransitions reports the statuses the process can move to next
func (s *PipelineService) AllowedTransitions(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID) (*pipeline.StatusTransitionsResponse, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	allowed := pipeline.AllowedTransitions(process.Status)
	if allowed == nil {
		allowed = []pipeline.Status{}
	}
	return &pipeline.StatusTransitionsResponse{
		Current: process.Status,
		Allowed: allowed,
	}, nil
}

// AddCandidates unions candidate ids into the process
func (s *PipelineService) AddCandidates(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, ids []kernel.CandidateID) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if !process.AddCandidates(ids, s.now().UTC()) {
		return process, nil
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// AddInterviewers unions interviewer ids into the process
func (s *PipelineService) AddInterviewers(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, ids []kernel.UserID) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if !process.AddInterviewers(ids, s.now().UTC()) {
		return process, nil
	}
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// SetSchedule stores the given start and end dates as-is
func (s *PipelineService) SetSchedule(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, start, end *time.Time) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	process.SetSchedule(start, end, s.now().UTC())
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// UpdateDetails patches title, description, criteria and settings
func (s *PipelineService) UpdateDetails(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID, req pipeline.UpdateHiringProcessRequest) (*pipeline.HiringProcess, error) {
	process, err := s.loadOwned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	process.UpdateDetails(req.Title, req.Description, req.Criteria, req.Settings, s.now().UTC())
	if err := s.save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// DeleteProcess removes a process on its owner's request
func (s *PipelineService) DeleteProcess(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID) error {
	if _, err := s.loadOwned(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete hiring process", errx.TypeInternal)
	}
	logx.With("process_id", id, "owner_id", requesterID).Info("hiring process deleted")
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *PipelineService) loadOwned(ctx context.Context, id kernel.HiringProcessID, requesterID kernel.UserID) (*pipeline.HiringProcess, error) {
	process, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errx.IsCode(err, pipeline.CodeNotFound) {
			return nil, pipeline.ErrNotFound().WithDetail("process_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to load hiring process", errx.TypeInternal)
	}
	if err := ownership.Authorize(process.OwnerID, requesterID); err != nil {
		return nil, err
	}
	return process, nil
}

func (s *PipelineService) save(ctx context.Context, process *pipeline.HiringProcess) error {
	err := s.repo.Update(ctx, process)
	if err == nil {
		return nil
	}
	if errx.IsCode(err, pipeline.CodeVersionConflict) {
		telemetry.VersionConflicts.WithLabelValues("hiring_process").Inc()
		logx.With("process_id", process.ID, "version", process.Version).Warn("hiring process version conflict")
		return err
	}
	return errx.Wrap(err, "failed to update hiring process", errx.TypeInternal)
}
