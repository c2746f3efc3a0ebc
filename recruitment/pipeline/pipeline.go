package pipeline

import (
	"slices"
	"strconv"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

// Status represents the lifecycle state of a hiring process
type Status string

const (
	StatusDraft     Status = "DRAFT"     // Being prepared, not running yet
	StatusActive    Status = "ACTIVE"    // Candidates are moving through stages
	StatusPaused    Status = "PAUSED"    // Temporarily on hold
	StatusCompleted Status = "COMPLETED" // Terminal
	StatusCancelled Status = "CANCELLED" // Terminal
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Stage is a named step of a hiring process, e.g. "PhoneInterview"
type Stage string

// DefaultStage is the stage a process starts in when none is given
const DefaultStage Stage = "Screening"

type transition struct {
	from, to Status
}

// statusTransitions is the complete set of legal status changes
var statusTransitions = map[transition]struct{}{
	{StatusDraft, StatusActive}:     {},
	{StatusActive, StatusPaused}:    {},
	{StatusActive, StatusCompleted}: {},
	{StatusActive, StatusCancelled}: {},
	{StatusPaused, StatusActive}:    {},
	{StatusPaused, StatusCancelled}: {},
}

// CanTransition reports whether from -> to is a legal status change.
// A self transition is not a change and is not part of the table.
func CanTransition(from, to Status) bool {
	_, ok := statusTransitions[transition{from, to}]
	return ok
}

// AllowedTransitions lists the statuses reachable from s in one step
func AllowedTransitions(s Status) []Status {
	var out []Status
	for _, to := range []Status{StatusDraft, StatusActive, StatusPaused, StatusCompleted, StatusCancelled} {
		if CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}

// StagePolicy controls which declared stages advanceStage may select
type StagePolicy string

const (
	// StagePolicyFree allows re-selecting any declared stage (re-interviews, rework)
	StagePolicyFree StagePolicy = "free"
	// StagePolicyForwardOnly rejects moves to a stage declared before the current one
	StagePolicyForwardOnly StagePolicy = "forward_only"
)

// ParseStagePolicy maps a config value to a policy; "" means free
func ParseStagePolicy(s string) (StagePolicy, error) {
	switch StagePolicy(s) {
	case "", StagePolicyFree:
		return StagePolicyFree, nil
	case StagePolicyForwardOnly:
		return StagePolicyForwardOnly, nil
	}
	return "", ErrValidationFailed().WithDetail("stage_policy", s)
}

// HiringProcess is the pipeline a job's candidates move through
type HiringProcess struct {
	ID             kernel.HiringProcessID    `db:"id" json:"id"`
	OwnerID        kernel.UserID             `db:"owner_id" json:"owner_id"`
	JobID          kernel.JobID              `db:"job_id" json:"job_id"`
	Title          kernel.ProcessTitle       `db:"title" json:"title"`
	Description    kernel.ProcessDescription `db:"description" json:"description"`
	Status         Status                    `db:"status" json:"status"`
	Stages         []Stage                   `db:"stages" json:"stages"`
	CurrentStage   Stage                     `db:"current_stage" json:"current_stage"`
	CandidateIDs   []kernel.CandidateID      `db:"candidate_ids" json:"candidate_ids"`
	InterviewerIDs []kernel.UserID           `db:"interviewer_ids" json:"interviewer_ids"`
	StartDate      *time.Time                `db:"start_date" json:"start_date,omitempty"`
	EndDate        *time.Time                `db:"end_date" json:"end_date,omitempty"`
	Criteria       kernel.Attributes         `db:"criteria" json:"criteria"`
	Settings       kernel.Attributes         `db:"settings" json:"settings"`
	Version        int64                     `db:"version" json:"version"`
	CreatedAt      time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                 `db:"updated_at" json:"updated_at"`
}

// NewProcessParams carries everything needed to open a hiring process
type NewProcessParams struct {
	ID            kernel.HiringProcessID
	OwnerID       kernel.UserID
	JobID         kernel.JobID
	Title         kernel.ProcessTitle
	Description   kernel.ProcessDescription
	Stages        []Stage
	InitialStatus Status
	InitialStage  Stage
	StartDate     *time.Time
	EndDate       *time.Time
	Criteria      kernel.Attributes
	Settings      kernel.Attributes
	Now           time.Time
}

// NewHiringProcess validates params and builds a process at version 1
func NewHiringProcess(p NewProcessParams) (*HiringProcess, error) {
	if p.OwnerID.IsEmpty() {
		return nil, ErrValidationFailed().WithDetail("owner_id", "required")
	}
	if p.JobID.IsEmpty() {
		return nil, ErrValidationFailed().WithDetail("job_id", "required")
	}

	stages, err := normalizeStages(p.Stages)
	if err != nil {
		return nil, err
	}

	status := p.InitialStatus
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, ErrValidationFailed().WithDetail("initial_status", string(status))
	}

	current := DefaultStage
	if p.InitialStage != "" {
		if !stageAllowed(stages, p.InitialStage) {
			return nil, ErrUnknownStage().
				WithDetail("stage", string(p.InitialStage)).
				WithDetail("stages", stages)
		}
		current = p.InitialStage
	}

	if p.Criteria == nil {
		p.Criteria = kernel.Attributes{}
	}
	if p.Settings == nil {
		p.Settings = kernel.Attributes{}
	}

	return &HiringProcess{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		JobID:          p.JobID,
		Title:          p.Title,
		Description:    p.Description,
		Status:         status,
		Stages:         stages,
		CurrentStage:   current,
		CandidateIDs:   []kernel.CandidateID{},
		InterviewerIDs: []kernel.UserID{},
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Criteria:       p.Criteria,
		Settings:       p.Settings,
		Version:        1,
		CreatedAt:      p.Now,
		UpdatedAt:      p.Now,
	}, nil
}

// normalizeStages drops duplicate names keeping first occurrence order
func normalizeStages(in []Stage) ([]Stage, error) {
	out := make([]Stage, 0, len(in))
	for i, s := range in {
		if s == "" {
			return nil, ErrValidationFailed().WithDetail("stages", "stage name at index "+strconv.Itoa(i)+" is empty")
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// stageAllowed is the create-time membership rule: a declared stage, or the
// default stage when nothing was declared.
func stageAllowed(stages []Stage, s Stage) bool {
	if len(stages) == 0 {
		return s == DefaultStage
	}
	return slices.Contains(stages, s)
}

// ============================================================================
// Domain Methods
// ============================================================================

// HasStage reports whether s is one of the declared stages
func (p *HiringProcess) HasStage(s Stage) bool {
	return slices.Contains(p.Stages, s)
}

// StageIndex returns the position of s in Stages, or -1
func (p *HiringProcess) StageIndex(s Stage) int {
	return slices.Index(p.Stages, s)
}

// StageMove classifies a stage change by declared order
type StageMove string

const (
	StageMoveForward  StageMove = "forward"
	StageMoveBackward StageMove = "backward"
	StageMoveRepeat   StageMove = "repeat"
)

// ClassifyStageMove compares the declared positions of from and to. A from
// stage that is not declared counts as the start of the pipeline.
func (p *HiringProcess) ClassifyStageMove(from, to Stage) StageMove {
	i, j := p.StageIndex(from), p.StageIndex(to)
	switch {
	case i == j:
		return StageMoveRepeat
	case j < i:
		return StageMoveBackward
	default:
		return StageMoveForward
	}
}

// AdvanceStage moves the process to target, which must be a declared stage.
// Under StagePolicyForwardOnly the target may not precede the current stage.
func (p *HiringProcess) AdvanceStage(target Stage, policy StagePolicy, now time.Time) error {
	if !p.HasStage(target) {
		return ErrInvalidStageTransition().
			WithDetail("stage", string(target)).
			WithDetail("reason", "stage not declared")
	}

	if policy == StagePolicyForwardOnly {
		if cur := p.StageIndex(p.CurrentStage); cur >= 0 && p.StageIndex(target) < cur {
			return ErrInvalidStageTransition().
				WithDetail("from", string(p.CurrentStage)).
				WithDetail("stage", string(target)).
				WithDetail("reason", "backward move not allowed")
		}
	}

	p.CurrentStage = target
	p.UpdatedAt = now
	return nil
}

// UpdateStatus applies a status change. It reports false without touching
// the process when to equals the current status.
func (p *HiringProcess) UpdateStatus(to Status, now time.Time) (bool, error) {
	if !to.IsValid() {
		return false, ErrValidationFailed().WithDetail("status", string(to))
	}
	if to == p.Status {
		return false, nil
	}
	if !CanTransition(p.Status, to) {
		return false, ErrInvalidStatusTransition().
			WithDetail("from", string(p.Status)).
			WithDetail("to", string(to)).
			WithDetail("allowed", AllowedTransitions(p.Status))
	}

	p.Status = to
	p.UpdatedAt = now
	return true, nil
}

// AddCandidates unions ids into the candidate set
func (p *HiringProcess) AddCandidates(ids []kernel.CandidateID, now time.Time) bool {
	merged, changed := kernel.UniqueIDs(p.CandidateIDs, ids...)
	if changed {
		p.CandidateIDs = merged
		p.UpdatedAt = now
	}
	return changed
}

// AddInterviewers unions ids into the interviewer set
func (p *HiringProcess) AddInterviewers(ids []kernel.UserID, now time.Time) bool {
	merged, changed := kernel.UniqueIDs(p.InterviewerIDs, ids...)
	if changed {
		p.InterviewerIDs = merged
		p.UpdatedAt = now
	}
	return changed
}

// SetSchedule overwrites the dates that are given. No ordering is enforced.
func (p *HiringProcess) SetSchedule(start, end *time.Time, now time.Time) {
	if start != nil {
		p.StartDate = start
	}
	if end != nil {
		p.EndDate = end
	}
	p.UpdatedAt = now
}

// UpdateDetails overwrites the descriptive fields that are given
func (p *HiringProcess) UpdateDetails(title *kernel.ProcessTitle, description *kernel.ProcessDescription, criteria, settings kernel.Attributes, now time.Time) {
	if title != nil {
		p.Title = *title
	}
	if description != nil {
		p.Description = *description
	}
	if criteria != nil {
		p.Criteria = criteria
	}
	if settings != nil {
		p.Settings = settings
	}
	p.UpdatedAt = now
}

// IsOpen reports whether the process still accepts work
func (p *HiringProcess) IsOpen() bool {
	return !p.Status.IsTerminal()
}
