package pipeline

import (
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

// CreateHiringProcessRequest opens a pipeline for a job
type CreateHiringProcessRequest struct {
	JobID         kernel.JobID              `json:"job_id" validate:"required"`
	Title         kernel.ProcessTitle       `json:"title" validate:"required,max=200"`
	Description   kernel.ProcessDescription `json:"description" validate:"max=5000"`
	Stages        []Stage                   `json:"stages" validate:"dive,required,max=100"`
	InitialStatus Status                    `json:"initial_status,omitempty"`
	InitialStage  Stage                     `json:"initial_stage,omitempty"`
	StartDate     *time.Time                `json:"start_date,omitempty"`
	EndDate       *time.Time                `json:"end_date,omitempty"`
	Criteria      kernel.Attributes         `json:"criteria,omitempty"`
	Settings      kernel.Attributes         `json:"settings,omitempty"`
}

// UpdateHiringProcessRequest patches descriptive fields; nil leaves a field unchanged
type UpdateHiringProcessRequest struct {
	Title       *kernel.ProcessTitle       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *kernel.ProcessDescription `json:"description,omitempty" validate:"omitempty,max=5000"`
	Criteria    kernel.Attributes          `json:"criteria,omitempty"`
	Settings    kernel.Attributes          `json:"settings,omitempty"`
}

type AdvanceStageRequest struct {
	Stage Stage `json:"stage" validate:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type AddCandidatesRequest struct {
	CandidateIDs []kernel.CandidateID `json:"candidate_ids" validate:"required,min=1,dive,required"`
}

type AddInterviewersRequest struct {
	InterviewerIDs []kernel.UserID `json:"interviewer_ids" validate:"required,min=1,dive,required"`
}

// SetScheduleRequest sets either date; an omitted date keeps its stored value
type SetScheduleRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// StatusTransitionsResponse describes where a process may go next
type StatusTransitionsResponse struct {
	Current Status   `json:"current"`
	Allowed []Status `json:"allowed"`
}

type PaginatedHiringProcessesResponse = kernel.Paginated[HiringProcess]
